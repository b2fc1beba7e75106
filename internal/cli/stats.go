package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/koru-wellness/koru/internal/app/rules"
	"github.com/koru-wellness/koru/internal/daemon"
	"github.com/koru-wellness/koru/internal/infra/catalog"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats <user>",
	Short: "Show a user's points, streak, and level",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	userStats, err := d.Stats.UserStats(context.Background(), args[0])
	if err != nil {
		return err
	}

	level := rules.CalculateLevel(userStats.TotalPoints)
	progress := rules.CalculateLevelProgress(userStats.TotalPoints)

	fmt.Printf("%s %s (level %d) — %d points, %d%% to next level\n",
		level.Icon, level.Name, level.Level, userStats.TotalPoints, progress)
	fmt.Printf("Streak: %d days (longest %d), last activity %s\n",
		userStats.CurrentStreak, userStats.LongestStreak, orNone(userStats.LastActivityDate))
	fmt.Printf("Badges: %d of %d unlocked\n\n", len(userStats.UnlockedBadges), len(catalog.Badges))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACTIVITY\tCOUNT\tPOINTS EACH")
	for _, activity := range catalog.ActivityTypes() {
		fmt.Fprintf(w, "%s\t%d\t%d\n",
			activity, userStats.ActivityCounts[activity], catalog.ActivityPoints[activity])
	}
	return w.Flush()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
