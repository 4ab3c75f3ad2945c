package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/barstats/barstats/internal/config"
	"github.com/barstats/barstats/internal/gpu"
	"github.com/barstats/barstats/internal/model"
	"github.com/barstats/barstats/internal/pubip"
	"github.com/barstats/barstats/internal/scheduler"
	"github.com/barstats/barstats/internal/source"
	"github.com/barstats/barstats/internal/ui"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "barstats: %v\n", err)
		os.Exit(2)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := source.NewSystem()
	util := gpu.NewCache(gpu.CommandProbe(cfg.ProbeCommand), log)
	address := pubip.New(cfg.PublicIP.URL, cfg.PublicIP.TTL, cfg.PublicIP.UserAgent, log)

	selection := model.Auto()
	if cfg.Interface != "" {
		selection = model.Manual(cfg.Interface)
	}

	sched := scheduler.New(scheduler.Options{
		FastInterval: cfg.FastInterval,
		SlowInterval: cfg.SlowInterval,
		Selection:    selection,
		PublicIP:     cfg.PublicIP.Enabled,
	}, src, util, address, log)

	if err := ui.Run(ctx, sched); err != nil {
		log.Error().Err(err).Msg("display terminated")
		os.Exit(1)
	}
}
