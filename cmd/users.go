package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/attendbot/attend-admin/internal/attend"
	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/imaging"
	"github.com/attendbot/attend-admin/internal/roster"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage enrolled users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled users",
	RunE:  runUsersList,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Enroll a new user with reference face images",
	Long: `Enroll a new user. At least one reference face image is required and
at most three are accepted. Images are downscaled and re-encoded before
upload.`,
	RunE: runUsersCreate,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user and all their data",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	usersListCmd.Flags().String("query", "", "Filter users by name (diacritics-insensitive)")

	usersCreateCmd.Flags().String("name", "", "Full name of the user")
	usersCreateCmd.Flags().String("phone", "", "Phone number of the user")
	usersCreateCmd.Flags().StringSlice("face", nil, "Path to a reference face image (repeatable, max 3)")

	usersDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runUsersList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	users, err := client.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	query := mustGetString(cmd, "query")
	filtered := make([]attend.User, 0, len(users))
	for _, u := range users {
		if roster.MatchesName(u.Name, query) {
			filtered = append(filtered, u)
		}
	}

	if len(filtered) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	sort.Slice(filtered, func(i, j int) bool {
		return roster.NormalizeName(filtered[i].Name) < roster.NormalizeName(filtered[j].Name)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONE\tFACES\tTELEGRAM")
	fmt.Fprintln(w, "--\t----\t-----\t-----\t--------")

	for i := range filtered {
		telegram := "-"
		if filtered[i].TelegramID != nil {
			telegram = fmt.Sprintf("%d", *filtered[i].TelegramID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			filtered[i].ID, filtered[i].Name, filtered[i].Phone, filtered[i].FaceRegistered, telegram)
	}

	w.Flush()

	fmt.Printf("\nTotal: %d users\n", len(filtered))

	return nil
}

// loadFaceFiles reads and normalizes reference images from disk.
func loadFaceFiles(paths []string, maxEdge int) ([][]byte, error) {
	faces := make([][]byte, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		normalized, err := imaging.Normalize(raw, maxEdge)
		if err != nil {
			return nil, fmt.Errorf("failed to process %s: %w", path, err)
		}
		faces = append(faces, normalized)
	}
	return faces, nil
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	name := mustGetString(cmd, "name")
	phone := mustGetString(cmd, "phone")
	facePaths := mustGetStringSlice(cmd, "face")

	if len(facePaths) == 0 {
		return fmt.Errorf("at least one --face image is required")
	}
	if len(facePaths) > attend.MaxFaceSlots {
		return attend.ErrCapacityExceeded
	}

	faces, err := loadFaceFiles(facePaths, cfg.Images.MaxEdge)
	if err != nil {
		return err
	}

	if err := client.CreateUser(name, phone, faces); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %q with %d reference images\n", name, len(faces))
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	manager := newRoster(client, mustGetBool(cmd, "yes"))
	if err := manager.DeleteUser(id); err != nil {
		if errors.Is(err, roster.ErrAborted) {
			fmt.Println("Aborted.")
			return nil
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("Deleted user %d\n", id)
	return nil
}
