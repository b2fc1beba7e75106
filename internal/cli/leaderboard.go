package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/koru-wellness/koru/internal/app/rules"
	"github.com/koru-wellness/koru/internal/daemon"
)

func init() {
	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 10, "Number of users to show")
	rootCmd.AddCommand(leaderboardCmd)
}

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"top"},
	Short:   "Show the top users by total points",
	RunE:    runLeaderboard,
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	board, err := d.Stats.Leaderboard(context.Background(), leaderboardLimit)
	if err != nil {
		return err
	}

	if len(board) == 0 {
		fmt.Println("No users yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tUSER\tPOINTS\tLEVEL\tSTREAK")
	for i, entry := range board {
		level := rules.CalculateLevel(entry.TotalPoints)
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\n",
			i+1, entry.UserID, entry.TotalPoints, level.Name, entry.CurrentStreak)
	}
	return w.Flush()
}
