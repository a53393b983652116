package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusrpg/focusrpg/internal/daemon"
)

func init() {
	rootCmd.AddCommand(redeemCmd)
}

var redeemCmd = &cobra.Command{
	Use:   "redeem <minutes>",
	Short: "Open an unlock window by spending wallet minutes",
	Args:  cobra.ExactArgs(1),
	RunE:  runRedeem,
}

func runRedeem(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("minutes must be a number, got %q", args[0])
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Wallet.Redeem(context.Background(), minutes, time.Now())
	if err != nil {
		return err
	}

	if !result.Allowed {
		fmt.Printf("Blocked: %s\n", result.Reason)
		for source, progress := range result.Progress {
			fmt.Printf("  %s: %s\n", source, progress)
		}
		return nil
	}

	fmt.Printf("Unlock window open: %d minutes.\n", minutes)
	for source, progress := range result.Progress {
		fmt.Printf("  %s: %s\n", source, progress)
	}
	return nil
}
