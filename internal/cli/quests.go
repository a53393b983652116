package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusrpg/focusrpg/internal/daemon"
)

func init() {
	questsCmd.AddCommand(claimQuestCmd)
	rootCmd.AddCommand(questsCmd)
}

var questsCmd = &cobra.Command{
	Use:   "quests",
	Short: "Show today's quests",
	RunE:  runQuests,
}

var claimQuestCmd = &cobra.Command{
	Use:   "claim <quest-id>",
	Short: "Claim a completed quest's rewards",
	Args:  cobra.ExactArgs(1),
	RunE:  runClaimQuest,
}

func runQuests(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	quests, err := d.Progress.EnsureDailyQuests(time.Now())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tQUEST\tPROGRESS\tREWARD\tSTATE")
	for _, q := range quests {
		state := "in progress"
		switch {
		case q.Claimed:
			state = "claimed"
		case q.Completed:
			state = "claimable"
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d min + %d XP\t%s\n",
			shortID(q.ID), q.Title, q.CurrentProgress, q.TargetCount,
			q.RewardMinutes, q.RewardXP, state)
	}
	return w.Flush()
}

func runClaimQuest(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	levelUp, err := d.Progress.ClaimQuest(id, time.Now())
	if err != nil {
		return err
	}
	fmt.Println("Quest claimed.")
	if levelUp != nil {
		fmt.Printf("LEVEL UP! %d → %d\n", levelUp.OldLevel, levelUp.NewLevel)
	}
	return nil
}
