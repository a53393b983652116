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
	scheduleCmd.Flags().StringVar(&scheduleDate, "date", "", "Day to show (YYYY-MM-DD, default today)")
	generateCmd.Flags().IntVar(&generateDays, "days", 7, "How many days ahead to materialize")
	addCmd.Flags().StringVar(&addTitle, "title", "", "Block title")
	addCmd.Flags().StringVar(&addStart, "start", "", "Start (YYYY-MM-DD HH:MM)")
	addCmd.Flags().StringVar(&addEnd, "end", "", "End (YYYY-MM-DD HH:MM)")
	addCmd.Flags().IntVar(&addReward, "reward", 20, "Base reward minutes at full completion")
	scheduleCmd.AddCommand(generateCmd, addCmd)
	rootCmd.AddCommand(scheduleCmd)
}

var (
	scheduleDate string
	generateDays int
	addTitle     string
	addStart     string
	addEnd       string
	addReward    int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the day's schedule",
	RunE:  runSchedule,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Materialize recurring blocks for the coming days",
	RunE:  runGenerate,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a one-off schedule block",
	RunE:  runScheduleAdd,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	day := time.Now()
	if scheduleDate != "" {
		day, err = time.ParseInLocation("2006-01-02", scheduleDate, time.Local)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	instances, err := d.Schedule.InstancesOn(d.Expander, day)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		fmt.Println("No blocks scheduled.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTART\tEND\tREWARD\tDONE")
	for _, inst := range instances {
		done := ""
		if inst.Completed {
			done = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d min\t%s\n",
			shortID(inst.ID), inst.Title,
			inst.StartTime.Format("15:04"), inst.EndTime.Format("15:04"),
			inst.BaseRewardMinutes, done)
	}
	return w.Flush()
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	start, err := time.ParseInLocation("2006-01-02 15:04", addStart, time.Local)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", addEnd, time.Local)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	inst, err := d.Schedule.CreateInstance(domain.ScheduleInstance{
		Title:             addTitle,
		StartTime:         start,
		EndTime:           end,
		BaseRewardMinutes: addReward,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Block %s created: %q %s-%s.\n", shortID(inst.ID), inst.Title,
		inst.StartTime.Format("15:04"), inst.EndTime.Format("15:04"))
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	now := time.Now()
	created, err := d.Expander.GenerateForRange(now, now.AddDate(0, 0, generateDays))
	if err != nil {
		return err
	}
	fmt.Printf("Materialized %d block(s).\n", created)
	return nil
}
