package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusrpg/focusrpg/internal/daemon"
	"github.com/focusrpg/focusrpg/internal/domain"
)

func init() {
	rootCmd.AddCommand(bonusCmd)
}

var bonusCmd = &cobra.Command{
	Use:   "bonus",
	Short: "Claim the weekend bonus (Friday through Sunday, once per weekend)",
	RunE:  runBonus,
}

func runBonus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	now := time.Now()
	minutes, err := d.Streaks.ClaimWeekendBonus(now)
	if errors.Is(err, domain.ErrBonusNotAvailable) {
		fmt.Println("Weekend bonus is not available right now.")
		return nil
	}
	if err != nil {
		return err
	}
	if err := d.Wallet.AddBonusMinutes(minutes, now); err != nil {
		return err
	}
	fmt.Printf("Weekend bonus claimed: +%d minutes.\n", minutes)
	return nil
}
