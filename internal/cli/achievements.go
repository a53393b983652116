package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusrpg/focusrpg/internal/daemon"
	"github.com/focusrpg/focusrpg/internal/domain"
)

func init() {
	achievementsCmd.Flags().StringVar(&achievementCategory, "category", "", "Filter: login_days or work_hours")
	achievementsCmd.AddCommand(claimAchievementCmd)
	rootCmd.AddCommand(achievementsCmd)
}

var achievementCategory string

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show lifetime achievements",
	RunE:  runAchievements,
}

var claimAchievementCmd = &cobra.Command{
	Use:   "claim <achievement-id>",
	Short: "Claim an unlocked achievement's rewards",
	Args:  cobra.ExactArgs(1),
	RunE:  runClaimAchievement,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	achievements, err := d.Progress.Achievements(domain.AchievementCategory(achievementCategory))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tACHIEVEMENT\tPROGRESS\tREWARDS\tSTATE")
	for _, a := range achievements {
		state := "locked"
		switch {
		case a.Claimed:
			state = "claimed"
		case a.Unlocked:
			state = "claimable"
		}
		rewards := ""
		for i, r := range a.Rewards {
			if i > 0 {
				rewards += ", "
			}
			rewards += r.Display()
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\n",
			shortID(a.ID), a.Title, a.CurrentProgress, a.Requirement, rewards, state)
	}
	return w.Flush()
}

func runClaimAchievement(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	levelUp, err := d.Progress.ClaimAchievement(id, time.Now())
	if err != nil {
		return err
	}
	fmt.Println("Achievement claimed.")
	if levelUp != nil {
		fmt.Printf("LEVEL UP! %d → %d\n", levelUp.OldLevel, levelUp.NewLevel)
	}
	return nil
}
