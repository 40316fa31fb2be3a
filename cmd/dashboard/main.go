package main

import (
	"context"
	"log"

	"smartfusion-dashboard/internal/bootstrap"
	"smartfusion-dashboard/internal/config"
	"smartfusion-dashboard/internal/server"
	"smartfusion-dashboard/internal/tracer"

	"github.com/fatih/color"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.Init(cfg.App.Name)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Notifier Service...")
		if err := container.NotifierService.Consume(context.Background()); err != nil {
			log.Printf("Background Notifier Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	color.Cyan("SmartFusion dashboard bridging %s", cfg.Backend.BaseURL)

	// 6. Run Server
	log.Fatal(srv.Run())
}
