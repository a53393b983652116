package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusrpg/focusrpg/internal/daemon"
	"github.com/focusrpg/focusrpg/internal/domain"
)

func init() {
	rulesAddCmd.Flags().StringVar(&ruleTitle, "title", "", "Block title")
	rulesAddCmd.Flags().StringVar(&ruleStart, "start", "", "Start time (HH:MM)")
	rulesAddCmd.Flags().StringVar(&ruleEnd, "end", "", "End time (HH:MM)")
	rulesAddCmd.Flags().StringVar(&ruleDays, "days", "", "Weekdays, comma-separated (mon,wed,fri)")
	rulesAddCmd.Flags().IntVar(&ruleReward, "reward", 20, "Base reward minutes at full completion")
	rulesCmd.AddCommand(rulesAddCmd, rulesRmCmd)
	rootCmd.AddCommand(rulesCmd)
}

var (
	ruleTitle  string
	ruleStart  string
	ruleEnd    string
	ruleDays   string
	ruleReward int
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List weekly recurrence rules",
	RunE:  runRulesList,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a weekly recurrence rule",
	RunE:  runRulesAdd,
}

var rulesRmCmd = &cobra.Command{
	Use:   "rm <rule-id>",
	Short: "Deactivate a rule and prune its future blocks",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesRm,
}

func runRulesList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	rules, err := d.Schedule.Rules()
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		fmt.Println("No rules defined.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTIME\tDAYS\tREWARD\tACTIVE")
	for _, r := range rules {
		active := ""
		if r.Active {
			active = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%02d:%02d-%02d:%02d\t%s\t%d min\t%s\n",
			shortID(r.ID), r.Title,
			r.StartHour, r.StartMinute, r.EndHour, r.EndMinute,
			formatDays(r.DaysOfWeek), r.BaseRewardMinutes, active)
	}
	return w.Flush()
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	startH, startM, err := parseClock(ruleStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	endH, endM, err := parseClock(ruleEnd)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	days, err := parseWeekdays(ruleDays)
	if err != nil {
		return fmt.Errorf("--days: %w", err)
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	rule, err := d.Schedule.CreateRule(domain.RecurrenceRule{
		Title:             ruleTitle,
		StartHour:         startH,
		StartMinute:       startM,
		EndHour:           endH,
		EndMinute:         endM,
		BaseRewardMinutes: ruleReward,
		DaysOfWeek:        days,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Rule %s created: %q on %s.\n", shortID(rule.ID), rule.Title, formatDays(rule.DaysOfWeek))
	return nil
}

func runRulesRm(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	pruned, err := d.Schedule.DeactivateRule(id, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Rule deactivated, %d future block(s) pruned.\n", pruned)
	return nil
}

// parseClock parses "HH:MM".
func parseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// weekdayNames maps short names to the 1=Sunday..7=Saturday encoding.
var weekdayNames = map[string]int{
	"sun": 1, "mon": 2, "tue": 3, "wed": 4, "thu": 5, "fri": 6, "sat": 7,
}

func parseWeekdays(s string) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("at least one weekday required")
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		n, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q (use mon..sun)", part)
		}
		days = append(days, n)
	}
	return days, nil
}

func formatDays(days []int) string {
	order := []string{"", "sun", "mon", "tue", "wed", "thu", "fri", "sat"}
	var names []string
	for _, d := range days {
		if d >= 1 && d <= 7 {
			names = append(names, order[d])
		}
	}
	return strings.Join(names, ",")
}
