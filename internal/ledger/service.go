// Package ledger runs normalized transactions through validation into the
// store.
package ledger

import (
	"context"
	"fmt"

	"github.com/mistakia/finance-sub001/internal/importer"
	"github.com/mistakia/finance-sub001/internal/logger"
	"github.com/mistakia/finance-sub001/internal/model"
)

// Writer persists transactions, merging by link.
type Writer interface {
	UpsertTransactions(ctx context.Context, txns []model.Transaction) (int, error)
}

// Service ingests raw institution records into the ledger.
type Service struct {
	store    Writer
	adapters *importer.Registry
}

// NewService creates a ledger Service.
func NewService(store Writer, adapters *importer.Registry) *Service {
	return &Service{store: store, adapters: adapters}
}

// IngestResult counts the records of one ingestion.
type IngestResult struct {
	Source     string
	Received   int
	Normalized int
	Written    int
}

// Ingest normalizes records with the adapter registered for source and
// writes them. Nothing is written if normalization or validation fails.
func (s *Service) Ingest(ctx context.Context, source, owner string, records []importer.Record) (IngestResult, error) {
	a := s.adapters.Get(source)
	if a == nil {
		return IngestResult{Source: source}, fmt.Errorf("unknown source %q (have %v)", source, s.adapters.Sources())
	}
	return s.IngestWith(ctx, a, owner, records)
}

// IngestWith is Ingest with an explicit adapter, for adapters that are not
// registered such as balance assertions.
func (s *Service) IngestWith(ctx context.Context, a importer.Adapter, owner string, records []importer.Record) (IngestResult, error) {
	log := logger.FromContext(ctx).With().Str("source", a.Source()).Str("owner", owner).Logger()
	res := IngestResult{Source: a.Source(), Received: len(records)}

	txns, err := a.Normalize(records, owner)
	if err != nil {
		log.Error().Err(err).Int("received", res.Received).Msg("normalization failed")
		return res, fmt.Errorf("normalizing %s records: %w", a.Source(), err)
	}
	res.Normalized = len(txns)

	if verrs := Validate(txns, owner); len(verrs) > 0 {
		for _, ve := range verrs {
			log.Warn().Str("rule", ve.Rule).Str("link", ve.Link).Msg(ve.Description)
		}
		return res, joinErrors(verrs)
	}

	for i := range txns {
		txns[i].Description = SanitizeText(txns[i].Description)
	}

	written, err := s.store.UpsertTransactions(ctx, txns)
	if err != nil {
		return res, fmt.Errorf("writing %s transactions: %w", a.Source(), err)
	}
	res.Written = written

	log.Info().
		Int("received", res.Received).
		Int("normalized", res.Normalized).
		Int("written", res.Written).
		Msg("ingested")
	return res, nil
}
