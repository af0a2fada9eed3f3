package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/user/aat_analyzer_go/internal/config"
	"github.com/user/aat_analyzer_go/internal/logutil"
)

func main() {
	var (
		timeColumn  = flag.String("time-column", "", "override the time column name")
		innerColumn = flag.String("inner-column", "", "override the inner capsule acceleration column")
		dragColumn  = flag.String("drag-column", "", "override the drag shield acceleration column")
		gQuality    = flag.Bool("g-quality", false, "run the G-quality sweep across window sizes")
		pdfReport   = flag.Bool("pdf", false, "also write a PDF report next to the Excel output")
		noCache     = flag.Bool("no-cache", false, "ignore and do not write cached results")
		noOverwrite = flag.Bool("no-overwrite", false, "never overwrite existing output files; use numbered suffixes")
	)
	flag.Parse()

	logger := logutil.New("cli")

	if err := godotenv.Load(); err == nil {
		logger.Debugf("loaded environment from .env")
	}

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Errorf("failed to load configuration: %v", err)
		os.Exit(1)
	}
	if *timeColumn != "" {
		cfg.TimeColumn = *timeColumn
	}
	if *innerColumn != "" {
		cfg.AccelerationColumnInnerCapsule = *innerColumn
	}
	if *dragColumn != "" {
		cfg.AccelerationColumnDragShield = *dragColumn
	}
	if *noCache {
		cfg.UseCache = false
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: aat_analyzer [flags] data.csv [data2.csv ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	app := NewApp(cfg, logger, Options{
		GQuality:  *gQuality,
		PDFReport: *pdfReport,
		Overwrite: !*noOverwrite,
	})

	// Files are processed strictly sequentially: one file fully finishes,
	// including its sweep and exports, before the next begins.
	failed := 0
	for _, file := range files {
		if err := app.ProcessFile(file); err != nil {
			logger.Errorf("%s: %v", file, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
