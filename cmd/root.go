package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/attendbot/attend-admin/internal/attend"
	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/roster"
)

var rootCmd = &cobra.Command{
	Use:   "attend-admin",
	Short: "Administrative client for the face-recognition attendance system",
	Long: `Attend Admin manages the roster of a face-recognition attendance system:
enrolling people, maintaining their reference images (up to three per person),
and viewing attendance metrics. It talks to the attendance backend over its
bearer-token API and can also serve the browser admin panel.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// newClient builds a backend client seeded from the persisted credential.
// When the backend rejects the token mid-command, the stored credential is
// gone by the time the error is printed, so the operator is told to log in
// again rather than retry.
func newClient(cfg *config.Config) (*attend.Client, error) {
	if cfg.Backend.URL == "" {
		return nil, errors.New("ATTEND_API_URL environment variable is required")
	}

	creds, err := attend.NewFileCredentialStore(cfg.Backend.TokenDir)
	if err != nil {
		return nil, err
	}

	client, err := attend.New(cfg.Backend.URL, creds)
	if err != nil {
		return nil, err
	}
	client.OnAuthExpired(func() {
		fmt.Fprintln(os.Stderr, "Session expired; run `attend-admin login` to sign in again.")
	})
	return client, nil
}

// requireLogin is newClient plus a check that a credential is present, so
// commands fail fast instead of collecting a 401 per request.
func requireLogin(cfg *config.Config) (*attend.Client, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	if !client.Authenticated() {
		return nil, errors.New("not logged in; run `attend-admin login` first")
	}
	return client, nil
}

// newRoster builds a slot manager with a terminal confirmation prompt for
// destructive actions.
func newRoster(client *attend.Client, yes bool) *roster.Manager {
	confirm := roster.Confirmer(&roster.PromptConfirmer{In: os.Stdin, Out: os.Stderr})
	if yes {
		confirm = roster.AutoConfirm
	}
	return roster.New(client, roster.WithConfirmer(confirm))
}
