package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/database/postgres"
	"github.com/attendbot/attend-admin/internal/web"
	"github.com/attendbot/attend-admin/internal/web/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin web server",
	Long: `Start the attendance admin web server.
The server hosts the browser UI and proxies every operation to the
attendance backend using the credential of the logged-in session.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (defaults to random)")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	sessionSecret := mustGetString(cmd, "session-secret")

	if sessionSecret == "" {
		sessionSecret = os.Getenv("WEB_SESSION_SECRET")
	}
	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host, sessionSecret
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Backend.URL == "" {
		return errors.New("ATTEND_API_URL environment variable is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sessionRepo middleware.SessionRepository
	if cfg.Database.URL != "" {
		fmt.Printf("Connecting to PostgreSQL database...\n")
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		defer pool.Close()

		repo := postgres.NewSessionRepository(pool)
		sessionRepo = repo
		fmt.Printf("Session persistence enabled (PostgreSQL)\n")

		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := repo.DeleteExpired(ctx); err != nil {
						fmt.Printf("Warning: failed to clean up expired sessions: %v\n", err)
					}
				}
			}
		}()
	} else {
		fmt.Printf("DATABASE_URL not set, sessions are kept in memory only\n")
	}

	port, host, sessionSecret := resolveServeHostPort(cmd)

	server := web.NewServer(cfg, port, host, sessionSecret, sessionRepo)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting attendance admin UI on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
