package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koru-wellness/koru/internal/daemon"
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/infra/catalog"
)

func init() {
	rootCmd.AddCommand(recordCmd)
}

var recordCmd = &cobra.Command{
	Use:   "record <user> <activity>",
	Short: "Record a wellness activity for a user",
	Long: `Record one occurrence of an activity (e.g. mood_check, workout).
Daily activities (mood_check, breathing_exercise, daily_goal_complete)
also advance the streak.`,
	Args: cobra.ExactArgs(2),
	RunE: runRecord,
}

func runRecord(cmd *cobra.Command, args []string) error {
	activity := domain.ActivityType(args[1])
	if !catalog.KnownActivity(activity) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownActivity, args[1])
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Stats.RecordActivity(context.Background(), args[0], activity, 0)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %s — total points now %d\n", activity, result.TotalPoints)
	for _, id := range result.NewBadges {
		if badge, ok := catalog.BadgeByID(id); ok {
			fmt.Printf("  %s Badge unlocked: %s (+%d points)\n", badge.Icon, badge.Name, badge.Points)
		}
	}
	return nil
}
