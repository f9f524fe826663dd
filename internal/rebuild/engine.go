// Package rebuild derives holdings from the transaction log and reconciles
// them against balance assertions.
package rebuild

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mistakia/finance-sub001/internal/logger"
	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/shopspring/decimal"
)

var (
	// DefaultDustTolerance is the largest magnitude treated as a fully
	// unwound position.
	DefaultDustTolerance = decimal.New(1, -6)

	// DefaultDiscrepancyTolerance is the largest ledger/assertion
	// difference that is not reported.
	DefaultDiscrepancyTolerance = decimal.New(1, -2)
)

// Store is the part of the store a rebuild needs.
type Store interface {
	Movements(ctx context.Context, asOf string) ([]model.Transaction, error)
	Assertions(ctx context.Context) ([]model.Transaction, error)
	ReplaceHoldings(ctx context.Context, holdings []model.Holding) error
}

// Config tunes a rebuild.
type Config struct {
	DustTolerance        decimal.Decimal
	DiscrepancyTolerance decimal.Decimal
	IncludeFees          bool
}

// DefaultConfig returns the default tolerances, fees excluded.
func DefaultConfig() Config {
	return Config{
		DustTolerance:        DefaultDustTolerance,
		DiscrepancyTolerance: DefaultDiscrepancyTolerance,
	}
}

// Options select what a rebuild replays.
type Options struct {
	// AsOf (YYYY-MM-DD) limits the replay to transactions dated on or
	// before it. Empty replays everything.
	AsOf string
}

// Result summarizes a rebuild.
type Result struct {
	RunID             string
	AsOf              string
	HoldingsCount     int
	AssertionsChecked int
	Discrepancies     []Discrepancy
	Holdings          []model.Holding
}

// Engine rebuilds the holdings table.
type Engine struct {
	store Store
	cfg   Config
	newID func() string
}

// NewEngine creates an Engine.
func NewEngine(store Store, cfg Config) *Engine {
	return &Engine{store: store, cfg: cfg, newID: func() string { return uuid.NewString() }}
}

// Rebuild replays the log into balances, reconciles them against the
// latest assertions, and republishes holdings atomically. Discrepancies are
// reported in the result; only store failures are errors, in which case
// the previous holdings remain.
func (e *Engine) Rebuild(ctx context.Context, opts Options) (*Result, error) {
	if opts.AsOf != "" {
		if _, err := model.ParseDate(opts.AsOf); err != nil {
			return nil, fmt.Errorf("invalid as-of date %q: %w", opts.AsOf, err)
		}
	}

	res := &Result{RunID: e.newID(), AsOf: opts.AsOf}
	log := logger.FromContext(ctx).With().Str("run_id", res.RunID).Str("as_of", opts.AsOf).Logger()
	start := time.Now()

	movements, err := e.store.Movements(ctx, opts.AsOf)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	balances := Aggregate(movements, e.cfg.IncludeFees)
	res.Holdings = balances.Holdings(e.cfg.DustTolerance)
	log.Info().
		Int("transactions", len(movements)).
		Int("balances", len(balances)).
		Int("holdings", len(res.Holdings)).
		Msg("computed holdings")

	assertions, err := e.store.Assertions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading balance assertions: %w", err)
	}
	res.Discrepancies, res.AssertionsChecked = Reconcile(balances, assertions, e.cfg.DiscrepancyTolerance)
	for _, d := range res.Discrepancies {
		log.Warn().
			Str("link", d.Link).
			Str("symbol", d.Symbol).
			Str("computed", d.Computed.String()).
			Str("asserted", d.Asserted.String()).
			Str("diff", d.Diff.String()).
			Msg("discrepancy")
	}

	if err := e.store.ReplaceHoldings(ctx, res.Holdings); err != nil {
		return nil, fmt.Errorf("republishing holdings: %w", err)
	}
	res.HoldingsCount = len(res.Holdings)

	log.Info().
		Int("holdings", res.HoldingsCount).
		Int("assertions_checked", res.AssertionsChecked).
		Int("discrepancies", len(res.Discrepancies)).
		Dur("elapsed", time.Since(start)).
		Msg("rebuild complete")
	return res, nil
}
