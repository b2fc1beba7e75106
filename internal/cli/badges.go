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
	rootCmd.AddCommand(badgesCmd)
}

var badgesCmd = &cobra.Command{
	Use:   "badges <user>",
	Short: "Show badge progress for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	userStats, err := d.Stats.UserStats(context.Background(), args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BADGE\tTIER\tCATEGORY\tPROGRESS\tREWARD")
	for _, badge := range catalog.Badges {
		status := "locked"
		if userStats.HasBadge(badge.ID) {
			status = "unlocked"
		} else if progress, err := rules.GetBadgeProgress(badge.ID, userStats); err == nil {
			status = fmt.Sprintf("%d%%", progress)
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\t%d\n",
			badge.Icon, badge.Name, badge.Type, badge.Category, status, badge.Points)
	}
	return w.Flush()
}
