package catalog

import (
	"context"

	"github.com/erpsync/backend/internal/application/sync"
	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TaxService synchronizes tax rates. Articles reference taxes by type,
// so a tax only disappears once no article uses it.
type TaxService struct {
	taxes    shared.EntityStore[catalog.Tax]
	articles shared.EntityStore[catalog.Article]
	coord    *sync.Coordinator[catalog.Tax, *catalog.Tax]
}

// NewTaxService creates a new TaxService
func NewTaxService(
	taxes shared.EntityStore[catalog.Tax],
	articles shared.EntityStore[catalog.Article],
	tx shared.TxManager,
	clock shared.Clock,
	logger *zap.Logger,
) *TaxService {
	return &TaxService{
		taxes:    taxes,
		articles: articles,
		coord:    sync.NewCoordinator[catalog.Tax](taxes, tx, clock, logger),
	}
}

// Sync applies one tax batch
func (s *TaxService) Sync(ctx context.Context, inputs []TaxInput) (*sync.BatchResult, error) {
	items := make([]*catalog.Tax, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToEntity()
	}
	return s.coord.Upsert(ctx, items)
}

// Get returns one tax rate by type
func (s *TaxService) Get(ctx context.Context, taxType int) (*TaxView, error) {
	tax, err := s.taxes.Find(ctx, shared.Key{"tipoiva": taxType})
	if err != nil {
		return nil, err
	}
	return newTaxView(tax), nil
}

// List returns a page of tax rates
func (s *TaxService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[TaxView], error) {
	filter.Normalize()
	rows, total, err := s.taxes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]TaxView, len(rows))
	for i := range rows {
		views[i] = *newTaxView(&rows[i])
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes a tax rate not referenced by any article
func (s *TaxService) Delete(ctx context.Context, taxType int) error {
	key := shared.Key{"tipoiva": taxType}
	if _, err := s.taxes.Find(ctx, key); err != nil {
		return err
	}
	linked, err := s.articles.Count(ctx, shared.Key{"tipoimpuesto": taxType})
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewConsistencyError("tax type %d is still referenced by %d articles", taxType, linked)
	}
	return s.taxes.Delete(ctx, key)
}
