package cmd

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/roster"
)

type syncOutcome int

const (
	syncFailed syncOutcome = iota
	syncEmpty
	syncLoaded
)

// classifyRow buckets one fetched row for the sync summary.
func classifyRow(row roster.Row, err error) syncOutcome {
	switch {
	case err != nil:
		return syncFailed
	case row.FetchErr != "":
		return syncFailed
	case len(row.Slots) == 0:
		return syncEmpty
	default:
		return syncLoaded
	}
}

var facesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the slot state of every user",
	Long: `Walk the whole roster and fetch the reference-image slots of every
user. Useful as a health check: it reports users whose slot listing
fails and users with no reference images at all.`,
	RunE: runFacesSync,
}

func init() {
	facesCmd.AddCommand(facesSyncCmd)

	facesSyncCmd.Flags().Int("concurrency", 4, "Number of concurrent slot fetches")
}

func runFacesSync(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	manager := newRoster(client, true)
	users, err := manager.RefreshUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users enrolled.")
		return nil
	}

	bar := progressbar.NewOptions(len(users),
		progressbar.OptionSetDescription("Syncing slots"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("users"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	startTime := time.Now()

	var slotsLoaded int64
	var emptyCount int64
	var errorCount int64
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, user := range users {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			row, err := manager.RefreshSlots(userID)
			switch classifyRow(row, err) {
			case syncFailed:
				atomic.AddInt64(&errorCount, 1)
			case syncEmpty:
				atomic.AddInt64(&emptyCount, 1)
			case syncLoaded:
				atomic.AddInt64(&slotsLoaded, int64(len(row.Slots)))
			}

			bar.Add(1)
		}(user.ID)
	}

	wg.Wait()
	fmt.Println()

	fmt.Printf("Synced %d users in %s\n", len(users), time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("  Slots loaded:   %d\n", atomic.LoadInt64(&slotsLoaded))
	fmt.Printf("  Without images: %d\n", atomic.LoadInt64(&emptyCount))
	fmt.Printf("  Errors:         %d\n", atomic.LoadInt64(&errorCount))

	if errorCount > 0 {
		return fmt.Errorf("%d users failed to sync", errorCount)
	}
	return nil
}
