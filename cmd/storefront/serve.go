package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	controller "storefront/internal/controllers/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

type application struct {
	stack         *stack
	server        *http.Server
	shutdownChan  chan struct{}
	schedulerDone chan struct{}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the abandoned-order sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			st, err := buildStack(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			gin.SetMode(gin.ReleaseMode)
			r := gin.New()
			r.Use(gin.Recovery())
			controller.NewHandler(st.orders, st.payments, st.tokens, cfg.FilesDir).RegisterRoutes(r)

			app := &application{
				stack: st,
				server: &http.Server{
					Addr:         fmt.Sprintf(":%d", cfg.Port),
					Handler:      r,
					IdleTimeout:  time.Minute,
					ReadTimeout:  5 * time.Second,
					WriteTimeout: 5 * time.Minute,
				},
				shutdownChan:  make(chan struct{}),
				schedulerDone: make(chan struct{}),
			}

			go app.runSweepScheduler()
			return app.serve()
		},
	}
}

func (app *application) serve() error {
	log.Printf("Starting storefront on %s", app.server.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case serveErr = <-errChan:
		log.Printf("Server error: %v", serveErr)
	case sig := <-quit:
		log.Printf("Received signal %s. Shutting down server...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(app.shutdownChan)
	select {
	case <-app.schedulerDone:
		log.Println("Sweep scheduler stopped.")
	case <-time.After(10 * time.Second):
		log.Println("Sweep scheduler did not stop in time.")
	}

	if err := app.server.Shutdown(ctx); err != nil {
		log.Printf("Graceful server shutdown failed: %v", err)
	} else {
		log.Println("Server gracefully stopped.")
	}
	return serveErr
}

func (app *application) runSweepScheduler() {
	defer close(app.schedulerDone)

	interval := app.stack.cfg.SweepInterval
	sweep := func() {
		if _, err := app.stack.orders.SweepAbandoned(context.Background()); err != nil {
			log.Printf("Scheduler: %v", err)
		}
	}

	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Sweep scheduler started. Will run every %s.", interval)

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-app.shutdownChan:
			return
		}
	}
}
