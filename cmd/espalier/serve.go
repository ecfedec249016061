package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier/pkg/adapters/httpapi"
	storeredis "github.com/espalier-dev/espalier/pkg/adapters/redis"
	"github.com/espalier-dev/espalier/pkg/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the turn webhook server",
	Long:  `Starts the stateless HTTP server the NLU service invokes once per caller utterance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		watch, _ := cmd.Flags().GetBool("watch")
		logger := newLogger(cmd, true)

		reg, loader, err := loadRegistry(cmd)
		if err != nil {
			return err
		}

		engOpts := []engine.Option{engine.WithLogger(logger)}
		if redisAddr != "" {
			engOpts = append(engOpts, engine.WithStore(storeredis.New(redisAddr, "", 0)))
		}
		eng := engine.New(reg, engOpts...)

		handler, err := httpapi.NewHandler(eng, reg, httpapi.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("build http handler: %w", err)
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if watch {
			ticks, err := loader.Watch(ctx)
			if err != nil {
				return fmt.Errorf("watch flows: %w", err)
			}
			go func() {
				for range ticks {
					if err := reg.Reload(ctx, loader); err != nil {
						logger.Error("flow reload failed, keeping previous set", "err", err)
						continue
					}
					logger.Info("flows reloaded", "bots", reg.Names())
				}
			}()
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("turn server listening", "addr", srv.Addr, "bots", reg.Names())
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				if closeErr := srv.Close(); closeErr != nil {
					return fmt.Errorf("force close: %w", closeErr)
				}
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for turn audit records (empty disables)")
	serveCmd.Flags().Bool("watch", false, "Reload flows when the directory changes")
}
