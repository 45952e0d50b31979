package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/goldytalks/novig-kalshi-charts/internal/config"
	"github.com/goldytalks/novig-kalshi-charts/internal/engine"
	"github.com/goldytalks/novig-kalshi-charts/internal/market"
	"github.com/goldytalks/novig-kalshi-charts/internal/system"
	"github.com/goldytalks/novig-kalshi-charts/internal/video"
)

var buildVersion = "dev"

func main() {
	system.InitResourceLimits()

	seriesPtr := flag.String("series", "", "Kalshi series ticker (e.g., KXMICHCOACH)")
	daysPtr := flag.Int("days", 7, "Days of historical data")
	outputPtr := flag.String("output", "", "Output path (default: auto-generated in output/)")
	titlePtr := flag.String("title", "", "Chart title (default: derived from the series)")
	titlesFilePtr := flag.String("titles", "", "YAML file mapping series tickers to titles")
	fpsPtr := flag.Int("fps", 30, "Frame rate")
	durationPtr := flag.Float64("duration", 8.0, "Video duration in seconds")
	formatPtr := flag.String("format", "square", "Canvas preset: square")
	maxPtr := flag.Int("max-candidates", 8, "Maximum number of bars")
	noGridPtr := flag.Bool("no-gridlines", false, "Disable gridlines")
	previewPtr := flag.Bool("preview", false, "Write a single PNG preview instead of a video")
	fontPtr := flag.String("font", "assets/DharmaGothicE-ExBold.ttf", "Display font (TTF)")
	logoPtr := flag.String("logo", "assets/novig_logo.svg", "Logo asset (SVG or PNG)")
	qrPtr := flag.String("qr", "", "Content for an optional QR badge (bottom right)")
	statsPtr := flag.Bool("stats", false, "Print a performance report")

	flag.Parse()

	if *seriesPtr == "" {
		log.Fatal("[-] -series is required")
	}

	if *titlesFilePtr != "" {
		if err := config.LoadTitles(*titlesFilePtr); err != nil {
			log.Fatalf("[-] Titles file error: %v", err)
		}
	}

	title := *titlePtr
	if title == "" {
		title = config.DefaultTitle(*seriesPtr)
	}

	outputPath := *outputPtr
	if outputPath == "" {
		os.MkdirAll("output", 0755)
		ext := ".mp4"
		if *previewPtr {
			ext = ".png"
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		outputPath = filepath.Join("output", fmt.Sprintf("%s_%s%s", *seriesPtr, timestamp, ext))
	}

	cfg := &config.Config{
		Series:        *seriesPtr,
		Title:         title,
		OutputPath:    outputPath,
		FPS:           *fpsPtr,
		Duration:      *durationPtr,
		Format:        *formatPtr,
		MaxCandidates: *maxPtr,
		ShowGridlines: !*noGridPtr,
		DaysBack:      *daysPtr,
		FontPath:      *fontPtr,
		LogoPath:      *logoPtr,
		QRContent:     *qrPtr,
		ShowStats:     *statsPtr,
		BuildVersion:  buildVersion,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	if !*previewPtr {
		if _, err := system.FindFFmpeg(); err != nil {
			log.Fatal("[-] ffmpeg not found on PATH")
		}
	}

	ctx := context.Background()
	client := market.NewClient()

	fmt.Printf("[*] Loading markets for %s...\n", cfg.Series)
	markets, err := client.Markets(ctx, cfg.Series)
	if err != nil {
		log.Fatalf("[-] Market list error: %v", err)
	}
	if len(markets) == 0 {
		log.Fatalf("[-] No markets found for series %s", cfg.Series)
	}
	fmt.Printf("[*] Found %d markets, using top %d\n", len(markets), min(len(markets), cfg.MaxCandidates))

	fmt.Println("[*] Fetching historical data...")
	table, err := client.History(ctx, markets, cfg.Series, cfg.DaysBack, 60, cfg.MaxCandidates)
	if err != nil {
		log.Fatalf("[-] History error: %v", err)
	}
	fmt.Printf("[*] Loaded %d data points for %d candidates\n", table.Rows(), len(table.Series))

	project := engine.NewChartProject(cfg, table, video.NewFFmpegEncoder())

	if *previewPtr {
		data, err := project.Preview(-1)
		if err != nil {
			log.Fatalf("[-] Preview error: %v", err)
		}
		if err := os.WriteFile(cfg.OutputPath, data, 0644); err != nil {
			log.Fatalf("[-] Write error: %v", err)
		}
	} else {
		if err := project.Run(ctx); err != nil {
			log.Fatalf("[-] Project error: %v", err)
		}
	}

	fmt.Printf("[+++] Done! Result: %s\n", cfg.OutputPath)
}
