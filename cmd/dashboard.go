package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/attendbot/attend-admin/internal/config"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show attendance dashboard metrics",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := requireLogin(cfg)
	if err != nil {
		return err
	}

	dash, err := client.GetDashboard()
	if err != nil {
		return fmt.Errorf("failed to get dashboard: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total users\t%d\n", dash.Summary.TotalUsers)
	fmt.Fprintf(w, "Total attendance\t%d\n", dash.Summary.TotalAttendance)
	fmt.Fprintf(w, "Today's attendance\t%d\n", dash.Summary.TodayAttendance)
	fmt.Fprintf(w, "Active users today\t%d\n", dash.Summary.ActiveUsersToday)
	fmt.Fprintf(w, "Attendance rate today\t%.1f%%\n", dash.Summary.AttendanceRateToday)
	fmt.Fprintf(w, "Weekly attendance\t%d\n", dash.TimeMetrics.WeeklyAttendance)
	fmt.Fprintf(w, "Monthly attendance\t%d\n", dash.TimeMetrics.MonthlyAttendance)
	w.Flush()

	if len(dash.Trend) > 0 {
		fmt.Println("\nTrend:")
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tATTENDANCE")
		fmt.Fprintln(tw, "----\t----------")
		for _, p := range dash.Trend {
			fmt.Fprintf(tw, "%s\t%d\n", p.Date, p.Attendance)
		}
		tw.Flush()
	}

	return nil
}
