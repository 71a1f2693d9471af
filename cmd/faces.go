package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/attendbot/attend-admin/internal/attend"
	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/imaging"
	"github.com/attendbot/attend-admin/internal/roster"
)

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "Manage reference face images",
}

var facesListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List the reference images of a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runFacesList,
}

var facesAddCmd = &cobra.Command{
	Use:   "add <user-id> <image>",
	Short: "Add a reference image to a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runFacesAdd,
}

var facesReplaceCmd = &cobra.Command{
	Use:   "replace <user-id> <slot> <image>",
	Short: "Replace a reference image in a specific slot",
	Args:  cobra.ExactArgs(3),
	RunE:  runFacesReplace,
}

var facesDeleteCmd = &cobra.Command{
	Use:   "delete <user-id> <slot>",
	Short: "Delete a reference image from a specific slot",
	Args:  cobra.ExactArgs(2),
	RunE:  runFacesDelete,
}

var facesGetCmd = &cobra.Command{
	Use:   "get <user-id> <slot>",
	Short: "Download a reference image to a local file",
	Args:  cobra.ExactArgs(2),
	RunE:  runFacesGet,
}

func init() {
	rootCmd.AddCommand(facesCmd)
	facesCmd.AddCommand(facesListCmd)
	facesCmd.AddCommand(facesAddCmd)
	facesCmd.AddCommand(facesReplaceCmd)
	facesCmd.AddCommand(facesDeleteCmd)
	facesCmd.AddCommand(facesGetCmd)

	facesDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	facesGetCmd.Flags().String("output", "", "Output file (defaults to face_<user>_<slot>.jpg)")
}

// printRow renders the slot table of a single roster row.
func printRow(userID int, row roster.Row) {
	if row.Phase == roster.PhaseEmpty && len(row.Slots) == 0 {
		if row.FetchErr != "" {
			fmt.Printf("User %d: slots unavailable (%s)\n", userID, row.FetchErr)
			return
		}
		fmt.Printf("User %d has no reference images.\n", userID)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tLOCATOR")
	fmt.Fprintln(w, "----\t-------")
	for _, slot := range row.Slots {
		fmt.Fprintf(w, "%d\t%s\n", slot.Index, slot.Locator)
	}
	w.Flush()

	fmt.Printf("\n%d of %d slots in use\n", len(row.Slots), attend.MaxFaceSlots)
}

func runFacesList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	userID, err := parseID(args[0])
	if err != nil {
		return err
	}

	manager := newRoster(client, true)
	row, err := manager.RefreshSlots(userID)
	if err != nil {
		return fmt.Errorf("failed to list reference images: %w", err)
	}

	printRow(userID, row)
	return nil
}

// loadFaceFile reads and normalizes a single reference image from disk.
func loadFaceFile(path string, maxEdge int) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	normalized, err := imaging.Normalize(raw, maxEdge)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", path, err)
	}
	return normalized, nil
}

func runFacesAdd(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	userID, err := parseID(args[0])
	if err != nil {
		return err
	}

	image, err := loadFaceFile(args[1], cfg.Images.MaxEdge)
	if err != nil {
		return err
	}

	manager := newRoster(client, true)
	if err := manager.AddFace(userID, image); err != nil {
		if errors.Is(err, attend.ErrCapacityExceeded) {
			return fmt.Errorf("user %d already has %d reference images", userID, attend.MaxFaceSlots)
		}
		return fmt.Errorf("failed to add reference image: %w", err)
	}

	printRow(userID, manager.Row(userID))
	return nil
}

func runFacesReplace(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	userID, err := parseID(args[0])
	if err != nil {
		return err
	}
	slot, err := parseID(args[1])
	if err != nil {
		return fmt.Errorf("invalid slot %q", args[1])
	}

	image, err := loadFaceFile(args[2], cfg.Images.MaxEdge)
	if err != nil {
		return err
	}

	manager := newRoster(client, true)
	if err := manager.ReplaceFace(userID, slot, image); err != nil {
		return fmt.Errorf("failed to replace reference image: %w", err)
	}

	printRow(userID, manager.Row(userID))
	return nil
}

func runFacesDelete(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	userID, err := parseID(args[0])
	if err != nil {
		return err
	}
	slot, err := parseID(args[1])
	if err != nil {
		return fmt.Errorf("invalid slot %q", args[1])
	}

	manager := newRoster(client, mustGetBool(cmd, "yes"))
	if err := manager.DeleteFace(userID, slot); err != nil {
		if errors.Is(err, roster.ErrAborted) {
			fmt.Println("Aborted.")
			return nil
		}
		return fmt.Errorf("failed to delete reference image: %w", err)
	}

	printRow(userID, manager.Row(userID))
	return nil
}

func runFacesGet(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	userID, err := parseID(args[0])
	if err != nil {
		return err
	}
	slot, err := parseID(args[1])
	if err != nil {
		return fmt.Errorf("invalid slot %q", args[1])
	}

	body, _, err := client.FaceImage(userID, slot)
	if err != nil {
		return fmt.Errorf("failed to fetch reference image: %w", err)
	}
	defer body.Close()

	output := mustGetString(cmd, "output")
	if output == "" {
		output = fmt.Sprintf("face_%d_%d.jpg", userID, slot)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Printf("Saved to %s\n", output)
	return nil
}
