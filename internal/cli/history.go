package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/koru-wellness/koru/internal/daemon"
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <user>",
	Short: "Show a user's points history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	entries, err := d.Stats.PointsHistory(context.Background(), args[0], historyLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No activity recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTIVITY\tPOINTS\tBADGES")
	for _, e := range entries {
		badges := "-"
		if len(e.BadgesUnlocked) > 0 {
			badges = strings.Join(e.BadgesUnlocked, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%+d\t%s\n", e.Timestamp, e.Activity, e.PointsEarned, badges)
	}
	return w.Flush()
}
