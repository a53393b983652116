package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusrpg/focusrpg/internal/daemon"
)

func init() {
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(skipCmd)
}

var completeCmd = &cobra.Command{
	Use:   "complete <instance-id>",
	Short: "Complete a schedule block and collect its rewards",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

var skipCmd = &cobra.Command{
	Use:   "skip <instance-id>",
	Short: "Skip a schedule block (stat penalty, no rewards)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkip,
}

func runComplete(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	events, err := d.Schedule.Complete(context.Background(), id, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Completed: %.0f%% of tasks, %d min earned, %d min credited\n",
		events.CompletionPercent*100, events.MinutesEarned, events.MinutesCredited)
	if v := events.Verification; v != nil {
		fmt.Printf("  Verified bonus: +%d%% (%s)\n", v.BonusPercent, v.Details)
	}
	if lu := events.LevelUp; lu != nil {
		fmt.Printf("  LEVEL UP! %d → %d\n", lu.OldLevel, lu.NewLevel)
		for _, sprite := range lu.UnlockedSprites {
			fmt.Printf("    Unlocked: %s\n", sprite.Name)
		}
	}
	if m := events.StreakMilestone; m != nil {
		fmt.Printf("  Streak milestone: %d days!\n", m.Milestone)
	}
	return nil
}

func runSkip(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Schedule.Skip(context.Background(), id, time.Now()); err != nil {
		return err
	}
	fmt.Println("Skipped. Half the block's stat gain was deducted.")
	return nil
}
