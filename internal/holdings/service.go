// Package holdings is the read side of the holdings table.
package holdings

import (
	"context"
	"fmt"
	"sort"

	"github.com/mistakia/finance-sub001/internal/link"
	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// Lister reads holdings from the store.
type Lister interface {
	ListHoldings(ctx context.Context, prefix string) ([]model.Holding, error)
}

// Service provides in-memory lookup over a holdings snapshot.
type Service struct {
	holdings []model.Holding
	byKey    map[string]model.Holding
}

// NewService creates a Service from a slice of holdings.
func NewService(holdings []model.Holding) *Service {
	byKey := make(map[string]model.Holding, len(holdings))
	for _, h := range holdings {
		byKey[key(h.Link, h.Symbol)] = h
	}
	return &Service{holdings: holdings, byKey: byKey}
}

// Load reads the holdings under prefix from the store.
func Load(ctx context.Context, store Lister, prefix string) (*Service, error) {
	hs, err := store.ListHoldings(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("loading holdings: %w", err)
	}
	return NewService(hs), nil
}

func key(l, symbol string) string {
	return l + "|" + symbol
}

// All returns all holdings.
func (s *Service) All() []model.Holding {
	return s.holdings
}

// Get returns the holding of symbol at link.
func (s *Service) Get(l, symbol string) (model.Holding, bool) {
	h, ok := s.byKey[key(l, symbol)]
	return h, ok
}

// ByPrefix returns the holdings at or beneath prefix.
func (s *Service) ByPrefix(prefix string) []model.Holding {
	var result []model.Holding
	for _, h := range s.holdings {
		if link.HasPrefix(h.Link, prefix) {
			result = append(result, h)
		}
	}
	return result
}

// Symbols returns the distinct symbols held, sorted.
func (s *Service) Symbols() []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, h := range s.holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			symbols = append(symbols, h.Symbol)
		}
	}
	sort.Strings(symbols)
	return symbols
}

// Rollup sums quantities per symbol after truncating links to depth
// segments. Rollup(2) gives per-institution totals such as
// "/alice/schwab" USD.
func (s *Service) Rollup(depth int) []model.Holding {
	totals := make(map[string]*model.Holding)
	var order []string
	for _, h := range s.holdings {
		l := link.Truncate(h.Link, depth)
		k := key(l, h.Symbol)
		agg, ok := totals[k]
		if !ok {
			agg = &model.Holding{Link: l, Symbol: h.Symbol, Name: h.Symbol, AssetLink: h.AssetLink}
			totals[k] = agg
			order = append(order, k)
		}
		agg.Quantity = agg.Quantity.Add(h.Quantity)
	}

	result := make([]model.Holding, 0, len(order))
	for _, k := range order {
		result = append(result, *totals[k])
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Link != result[j].Link {
			return result[i].Link < result[j].Link
		}
		return result[i].Symbol < result[j].Symbol
	})
	return result
}

// Total sums the quantity of symbol across all holdings.
func (s *Service) Total(symbol string) decimal.Decimal {
	total := decimal.Zero
	for _, h := range s.holdings {
		if h.Symbol == symbol {
			total = total.Add(h.Quantity)
		}
	}
	return total
}
