package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusrpg/focusrpg/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show profile, wallet, and streak at a glance",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	now := time.Now()
	profile, err := d.Level.Profile()
	if err != nil {
		return err
	}
	wal, err := d.Wallet.Wallet(now)
	if err != nil {
		return err
	}
	streak, err := d.Streaks.Streak()
	if err != nil {
		return err
	}

	fmt.Printf("Level %d  (%d XP, %d to next)\n",
		profile.Level(), profile.TotalXP(), profile.ExperienceToNextLevel())
	fmt.Printf("  STR %.1f  AGI %.1f  INT %.1f  ART %.1f\n",
		profile.StrengthStat, profile.AgilityStat,
		profile.IntelligenceStat, profile.ArtistryStat)
	fmt.Printf("Wallet: %d min available, %d earned today\n",
		wal.AvailableMinutes, wal.EarnedTodayMinutes)
	if wal.Redeeming() {
		fmt.Printf("  Unlock window open: %ds remaining\n", wal.RemainingSeconds(now))
	}
	fmt.Printf("Streak: %d days (longest %d", streak.CurrentStreak, streak.LongestStreak)
	if next := streak.NextMilestone(); next > 0 {
		fmt.Printf(", next milestone %d", next)
	}
	fmt.Println(")")
	return nil
}
