package main

import (
	"flag"
	"log"
	"time"

	"wavepilot/internal/analyzer"
	"wavepilot/internal/api"
	"wavepilot/internal/catalog"
	"wavepilot/internal/config"
	database "wavepilot/internal/db"
	"wavepilot/internal/gate"
	"wavepilot/internal/prefs"
	"wavepilot/internal/queue"
	"wavepilot/internal/source"
	"wavepilot/internal/telemetry"
)

func main() {
	scanDir := flag.String("scan", "", "Seed the catalog from a local music directory, then continue")
	gateEndpoint := flag.String("gate", "", "Override gate evaluator endpoint")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("🚀 Starting Wavepilot playback engine...")

	cfg := config.Load()
	if *gateEndpoint != "" {
		cfg.Gate.Endpoint = *gateEndpoint
	}

	db := database.New(cfg)
	db.AutoMigrate()

	queue.RegisterMetrics()
	telemetry.RegisterMetrics()

	if *scanDir != "" {
		if _, err := catalog.NewScanner(db).Scan(*scanDir); err != nil {
			log.Printf("⚠️ Catalog scan failed: %v", err)
		}
	}

	// Object storage is optional: without it only local: sources resolve.
	var objects source.ObjectProvider
	if cfg.Storage.Endpoint != "" {
		s3, err := source.NewS3Provider(cfg)
		if err != nil {
			log.Fatalf("❌ Object storage init failed: %v", err)
		}
		objects = s3
	}
	resolver := source.NewResolver(objects, cfg.Storage.CacheDir)

	an := analyzer.New(analyzer.Options{
		Bins:       cfg.Analyzer.Bins,
		Smoothing:  cfg.Analyzer.Smoothing,
		FrameEvery: time.Duration(cfg.Analyzer.FrameMillis) * time.Millisecond,
	})

	manager := queue.New(queue.Deps{
		Gate:      gate.NewHTTPEvaluator(cfg.Gate.Endpoint, cfg.Gate.RequestsPerSec),
		Telemetry: telemetry.NewStore(db),
		Prefs:     prefs.NewStore(db),
		Resolver: queue.ResolverFunc(func(uri string) (queue.PlayableSource, error) {
			return resolver.Resolve(uri)
		}),
		Binder: queue.BinderFunc(func(src queue.PlayableSource) {
			if src == nil {
				an.Bind(nil)
				return
			}
			an.Bind(src)
		}),
		GateTimeout: time.Duration(cfg.Gate.TimeoutSeconds) * time.Second,
		ReportEvery: time.Duration(cfg.Telemetry.ReportSeconds) * time.Second,
	})
	defer manager.Close()

	server := api.New(cfg, manager, an, catalog.New(db))
	log.Printf("🌍 Listening on %s", cfg.Server.ListenAddr)
	if err := server.Start(); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
