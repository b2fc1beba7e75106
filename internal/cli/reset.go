package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koru-wellness/koru/internal/daemon"
)

func init() {
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset <user>",
	Short: "Reset a user's stats to defaults",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Stats.ResetUserStats(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Stats reset for %s\n", args[0])
	return nil
}
