package catalog

import (
	"context"
	"fmt"

	"github.com/erpsync/backend/internal/application/sync"
	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TariffService synchronizes tariffs. Overlapping validity ranges are
// accepted on write, because the source ERP runs seasonal and
// promotional tariffs side by side; CheckOverlap gives integrators an
// explicit pre-flight when they want exclusive ranges.
type TariffService struct {
	tariffs shared.EntityStore[catalog.Tariff]
	prices  shared.EntityStore[catalog.Price]
	coord   *sync.Coordinator[catalog.Tariff, *catalog.Tariff]
	logger  *zap.Logger
}

// NewTariffService creates a new TariffService
func NewTariffService(
	tariffs shared.EntityStore[catalog.Tariff],
	prices shared.EntityStore[catalog.Price],
	tx shared.TxManager,
	clock shared.Clock,
	logger *zap.Logger,
) *TariffService {
	return &TariffService{
		tariffs: tariffs,
		prices:  prices,
		coord:   sync.NewCoordinator[catalog.Tariff](tariffs, tx, clock, logger),
		logger:  logger,
	}
}

// Sync applies one tariff batch. Overlaps with stored tariffs are
// logged, not rejected.
func (s *TariffService) Sync(ctx context.Context, inputs []TariffInput) (*sync.BatchResult, error) {
	items := make([]*catalog.Tariff, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToEntity()
	}

	result, err := s.coord.Upsert(ctx, items)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		check, err := s.CheckOverlap(ctx, OverlapCheckInput{
			TariffID:   item.ID,
			ValidFrom:  item.ValidFrom,
			ValidUntil: item.ValidUntil,
		})
		if err != nil {
			return nil, err
		}
		if check.Overlaps {
			s.logger.Warn("tariff validity overlaps stored tariffs",
				zap.Int("tariff_id", item.ID),
				zap.Strings("conflicts", check.Conflicts))
		}
	}
	return result, nil
}

// Get returns one tariff by id
func (s *TariffService) Get(ctx context.Context, id int) (*TariffView, error) {
	tariff, err := s.tariffs.Find(ctx, shared.Key{"idtarifa": id})
	if err != nil {
		return nil, err
	}
	return newTariffView(tariff), nil
}

// List returns a page of tariffs
func (s *TariffService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[TariffView], error) {
	filter.Normalize()
	rows, total, err := s.tariffs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]TariffView, len(rows))
	for i := range rows {
		views[i] = *newTariffView(&rows[i])
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes a tariff with no stored prices
func (s *TariffService) Delete(ctx context.Context, id int) error {
	key := shared.Key{"idtarifa": id}
	if _, err := s.tariffs.Find(ctx, key); err != nil {
		return err
	}
	linked, err := s.prices.Count(ctx, key)
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewConsistencyError("tariff %d still has %d prices", id, linked)
	}
	return s.tariffs.Delete(ctx, key)
}

// CheckOverlap compares a candidate validity range against every stored
// tariff except the candidate itself
func (s *TariffService) CheckOverlap(ctx context.Context, input OverlapCheckInput) (*OverlapCheckResult, error) {
	candidate := sync.DateRange{Start: input.ValidFrom, End: input.ValidUntil}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 200
	var existing []sync.LabeledRange
	for {
		rows, total, err := s.tariffs.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			if rows[i].ID == input.TariffID {
				continue
			}
			existing = append(existing, sync.LabeledRange{
				Label: fmt.Sprintf("tariff %d %q", rows[i].ID, rows[i].Description),
				Range: sync.DateRange{Start: rows[i].ValidFrom, End: rows[i].ValidUntil},
			})
		}
		if int64(filter.Page*filter.PageSize) >= total {
			break
		}
		filter.Page++
	}

	conflicts := sync.FindOverlaps(candidate, existing)
	return &OverlapCheckResult{Overlaps: len(conflicts) > 0, Conflicts: conflicts}, nil
}
