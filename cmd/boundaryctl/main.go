package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/boundary-microservice/internal/app"
	"github.com/boundary-microservice/internal/config"
	"github.com/boundary-microservice/internal/delivery/cli"
	"github.com/boundary-microservice/internal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(func(ctx context.Context) (cli.Service, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		// CLI пишет в stdout, логи только предупреждения и выше
		level := cfg.Log.Level
		if level == "info" {
			level = "warn"
		}
		log, err := logger.New(level, "boundaryctl")
		if err != nil {
			return nil, nil, err
		}
		application, err := app.New(ctx, cfg, log, app.Options{})
		if err != nil {
			return nil, nil, err
		}
		return application.BoundaryUC, func() {
			application.Close()
			_ = log.Sync()
		}, nil
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
