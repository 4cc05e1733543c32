package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ishiasaka/labshop/internal/config"
	"github.com/ishiasaka/labshop/internal/kiosk"
	"github.com/ishiasaka/labshop/internal/upstream"
)

func main() {
	cfg := config.LoadKiosk()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := upstream.New(cfg.UpstreamURL)
	dash := kiosk.NewDashboard(client, cfg.PageSize)
	runtime := kiosk.NewRuntime(dash, kiosk.RuntimeOptions{
		WSURL:           cfg.WSURL,
		CaptureInterval: cfg.CaptureInterval,
		RefreshInterval: cfg.RefreshInterval,
		ReconnectDelay:  cfg.ReconnectDelay,
	})

	log.Printf("kiosk agent started (upstream %s, ws %s)", cfg.UpstreamURL, cfg.WSURL)
	runtime.Run(ctx)
	log.Printf("kiosk agent stopped")
}
