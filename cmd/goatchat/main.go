// Command goatchat runs the customer-support chatbot backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goatkit/goatchat/internal/api"
	"github.com/goatkit/goatchat/internal/config"
	"github.com/goatkit/goatchat/internal/database"
	"github.com/goatkit/goatchat/internal/repository"
	"github.com/goatkit/goatchat/internal/runner"
	"github.com/goatkit/goatchat/internal/runner/tasks"
	"github.com/goatkit/goatchat/internal/service"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "goatchat",
		Short: "Customer-support chatbot backend",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}
			slog.Info("schema applied", "driver", cfg.Database.Driver)
			return nil
		},
	}
}

func serve() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire the service graph.
	tracker := service.NewActivityTracker()
	closer := service.NewConversationCloser(tracker, service.SilenceThresholds{
		FirstPrompt: cfg.Closure.FirstPromptThreshold,
		Close:       cfg.Closure.CloseThreshold,
		FinalClose:  cfg.Closure.FinalCloseThreshold,
	})

	feedbackSvc := service.NewFeedbackService(
		repository.NewFeedbackRepository(db),
		service.RatingBounds{Min: cfg.Feedback.MinRating, Max: cfg.Feedback.MaxRating},
	)

	responder := service.NewResponder(cfg.Chat.CatalogPath)
	if err := responder.Watch(ctx); err != nil {
		slog.Warn("catalog hot-reload disabled", "error", err)
	}

	chatSvc := service.NewChatService(
		repository.NewMessageRepository(db),
		service.NewIntentPredictor(),
		responder,
		closer,
	)

	// Background cleanup of idle conversation state.
	tasksRunner := runner.New()
	if err := tasksRunner.Register(tasks.NewConversationCleanupTask(
		tracker, cfg.Closure.StateTTL, cfg.Closure.CleanupInterval)); err != nil {
		return fmt.Errorf("failed to register cleanup task: %w", err)
	}
	tasksRunner.Start()
	defer tasksRunner.Stop()

	router := api.NewRouter(cfg, api.Services{
		Feedback: feedbackSvc,
		Closer:   closer,
		Chat:     chatSvc,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
