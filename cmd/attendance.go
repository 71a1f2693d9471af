package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/attendbot/attend-admin/internal/config"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Show the attendance register",
	Long: `Show attendance records. Without arguments the full register is
printed; with a user id only that user's history (including check-in
locations) is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAttendance,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
}

func runAttendance(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		records, err := client.UserAttendance(id)
		if err != nil {
			return fmt.Errorf("failed to get attendance for user %d: %w", id, err)
		}

		if len(records) == 0 {
			fmt.Println("No attendance records found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCHECK-IN\tCHECK-OUT\tLAT\tLON")
		fmt.Fprintln(w, "--\t--------\t---------\t---\t---")
		for i := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.5f\t%.5f\n",
				records[i].ID, records[i].CheckIn, records[i].CheckOut, records[i].Lat, records[i].Lon)
		}
		w.Flush()

		fmt.Printf("\nTotal: %d records\n", len(records))
		return nil
	}

	records, err := client.Attendance()
	if err != nil {
		return fmt.Errorf("failed to get attendance: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No attendance records found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONE\tCHECK-IN\tCHECK-OUT")
	fmt.Fprintln(w, "--\t----\t-----\t--------\t---------")
	for i := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			records[i].ID, records[i].Name, records[i].Phone, records[i].CheckIn, records[i].CheckOut)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d records\n", len(records))
	return nil
}
