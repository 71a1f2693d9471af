package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/attendbot/attend-admin/internal/attend"
	"github.com/attendbot/attend-admin/internal/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the attendance backend",
	Long: `Authenticate against the attendance backend and store the bearer token
locally. All other commands pick the token up automatically until it expires
or you log out.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored credential",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().String("username", "", "Admin username (prompted when omitted)")
	loginCmd.Flags().String("password", "", "Admin password (prompted when omitted)")
}

// promptCredentials asks for whichever of username/password was not given as
// a flag. The password prompt suppresses echo.
func promptCredentials(username, password string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	if username == "" {
		fmt.Fprint(os.Stderr, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("could not read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", "", fmt.Errorf("could not read password: %w", err)
		}
		password = string(raw)
	}

	return username, password, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	username, password, err := promptCredentials(
		mustGetString(cmd, "username"),
		mustGetString(cmd, "password"),
	)
	if err != nil {
		return err
	}

	if err := client.Login(username, password); err != nil {
		if errors.Is(err, attend.ErrInvalidLogin) {
			return errors.New("invalid credentials")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("Logged in.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	if err := client.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	fmt.Println("Logged out.")
	return nil
}
