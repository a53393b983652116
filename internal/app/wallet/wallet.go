// Package wallet implements the screen-time wallet: earning minutes
// from completed work, the redeem state machine, and the unlock-window
// countdown.
package wallet

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/focusrpg/focusrpg/internal/app/blocking"
	"github.com/focusrpg/focusrpg/internal/app/gate"
	"github.com/focusrpg/focusrpg/internal/app/reward"
	"github.com/focusrpg/focusrpg/internal/domain"
	"github.com/focusrpg/focusrpg/internal/infra/metrics"
	"github.com/focusrpg/focusrpg/internal/infra/sqlite"
)

// Service owns wallet mutations. All earning and spending flows through
// here so the balance invariants hold in one place.
type Service struct {
	db       *sqlite.DB
	gate     *gate.Service
	blocking *blocking.Coordinator
}

// NewService creates a wallet service.
func NewService(db *sqlite.DB, g *gate.Service, b *blocking.Coordinator) *Service {
	if b == nil {
		b = blocking.NewCoordinator(nil)
	}
	return &Service{db: db, gate: g, blocking: b}
}

// Wallet returns the wallet with the lazy day rollover applied: the
// first access on a new calendar day resets the earned-today counter.
// There is no scheduled midnight job.
func (s *Service) Wallet(now time.Time) (domain.Wallet, error) {
	w, err := s.db.GetOrCreateWallet()
	if err != nil {
		return w, err
	}
	if !domain.SameDay(w.LastEarnedDate, now) {
		w.EarnedTodayMinutes = 0
		w.LastEarnedDate = now
		if err := s.db.SaveWallet(w); err != nil {
			return w, fmt.Errorf("rollover wallet: %w", err)
		}
	}
	return w, nil
}

// AddEarnedMinutes credits raw earned minutes through the screen-time
// ratio and returns the credited amount. Truncation, never rounding.
func (s *Service) AddEarnedMinutes(raw int, now time.Time) (int, error) {
	if raw <= 0 {
		return 0, nil
	}
	settings, err := s.db.GetOrCreateSettings()
	if err != nil {
		return 0, err
	}
	w, err := s.Wallet(now)
	if err != nil {
		return 0, err
	}

	credited := reward.RatioAdjusted(raw, settings.ScreenTimeRatio)
	w.AvailableMinutes += credited
	w.EarnedTodayMinutes += credited
	w.LastEarnedDate = now
	if err := s.db.SaveWallet(w); err != nil {
		return 0, fmt.Errorf("save wallet: %w", err)
	}

	metrics.MinutesEarned.Add(float64(credited))
	metrics.WalletBalance.Set(float64(w.AvailableMinutes))
	return credited, nil
}

// AddBonusMinutes credits claimed reward minutes directly, bypassing
// the screen-time ratio.
func (s *Service) AddBonusMinutes(minutes int, now time.Time) error {
	if minutes <= 0 {
		return nil
	}
	w, err := s.Wallet(now)
	if err != nil {
		return err
	}
	w.AvailableMinutes += minutes
	if err := s.db.SaveWallet(w); err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	metrics.MinutesEarned.Add(float64(minutes))
	metrics.WalletBalance.Set(float64(w.AvailableMinutes))
	return nil
}

// Redeem opens an unlock window for the given minutes. The balance and
// active-window guards run before the requirement gate, so a hopeless
// request never costs an oracle round trip. A gate veto returns the
// structured result with no error and no state change. At most one
// window can be open.
func (s *Service) Redeem(ctx context.Context, minutes int, now time.Time) (domain.RedemptionResult, error) {
	if minutes <= 0 {
		return domain.RedemptionResult{}, fmt.Errorf("minutes must be positive, got %d", minutes)
	}

	w, err := s.Wallet(now)
	if err != nil {
		return domain.RedemptionResult{}, err
	}
	if w.Redeeming() {
		return domain.RedemptionResult{}, domain.ErrRedemptionActive
	}
	if minutes > w.AvailableMinutes {
		return domain.RedemptionResult{}, domain.ErrInsufficientMinutes
	}

	result, err := s.gate.EvaluateRedemption(ctx, now)
	if err != nil {
		return domain.RedemptionResult{}, err
	}
	if !result.Allowed {
		metrics.RedemptionsBlocked.Inc()
		return result, nil
	}

	w.AvailableMinutes -= minutes
	w.RedeemedMinutesRemaining = minutes
	start := now
	w.RedemptionStartTime = &start
	if err := s.db.SaveWallet(w); err != nil {
		return domain.RedemptionResult{}, fmt.Errorf("save wallet: %w", err)
	}

	if err := s.blocking.Suppress(ctx); err != nil {
		log.Printf("[wallet] suppress blocking: %v", err)
	}
	metrics.MinutesRedeemed.Add(float64(minutes))
	metrics.WalletBalance.Set(float64(w.AvailableMinutes))
	metrics.RedemptionActive.Set(1)
	log.Printf("[wallet] unlock window opened: %d minutes", minutes)
	return result, nil
}

// RemainingSeconds returns the open window's remaining seconds, derived
// from wall-clock time.
func (s *Service) RemainingSeconds(now time.Time) (int, error) {
	w, err := s.db.GetOrCreateWallet()
	if err != nil {
		return 0, err
	}
	return w.RemainingSeconds(now), nil
}

// Tick closes the unlock window once its wall-clock budget is spent.
// Late ticks are fine: the remaining time is derived from the start
// time, so a sleeping process catches up on the next tick.
func (s *Service) Tick(ctx context.Context, now time.Time) error {
	w, err := s.db.GetOrCreateWallet()
	if err != nil {
		return err
	}
	if !w.Redeeming() {
		return nil
	}
	if w.RemainingSeconds(now) > 0 {
		return nil
	}

	w.RedeemedMinutesRemaining = 0
	w.RedemptionStartTime = nil
	if err := s.db.SaveWallet(w); err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}

	if err := s.blocking.Reinstate(ctx); err != nil {
		log.Printf("[wallet] reinstate blocking: %v", err)
	}
	metrics.RedemptionActive.Set(0)
	log.Printf("[wallet] unlock window closed")
	return nil
}
