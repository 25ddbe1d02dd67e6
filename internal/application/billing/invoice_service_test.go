package billing

import (
	"context"
	"sort"
	"testing"
	"time"

	appsync "github.com/erpsync/backend/internal/application/sync"
	"github.com/erpsync/backend/internal/domain/billing"
	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/partner"
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is a map-backed EntityStore; List honors filter.Filters by
// matching them against each row's natural key columns, and pages the
// matches the way the real store does
type memStore[T any, PT appsync.Syncable[T]] struct {
	rows map[string]*T
}

func newMemStore[T any, PT appsync.Syncable[T]]() *memStore[T, PT] {
	return &memStore[T, PT]{rows: make(map[string]*T)}
}

func (s *memStore[T, PT]) put(entity *T) {
	cp := *entity
	s.rows[PT(entity).EntityKey().String()] = &cp
}

func (s *memStore[T, PT]) Exists(_ context.Context, key shared.Key) (bool, error) {
	_, ok := s.rows[key.String()]
	return ok, nil
}

func (s *memStore[T, PT]) Find(_ context.Context, key shared.Key) (*T, error) {
	row, ok := s.rows[key.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *memStore[T, PT]) Insert(_ context.Context, entity *T) error { s.put(entity); return nil }
func (s *memStore[T, PT]) Update(_ context.Context, entity *T) error { s.put(entity); return nil }

func (s *memStore[T, PT]) Delete(_ context.Context, key shared.Key) error {
	delete(s.rows, key.String())
	return nil
}

func (s *memStore[T, PT]) Count(_ context.Context, where shared.Key) (int64, error) {
	var n int64
	for _, row := range s.rows {
		if matches(PT(row).EntityKey(), where) {
			n++
		}
	}
	return n, nil
}

func (s *memStore[T, PT]) List(_ context.Context, filter shared.Filter) ([]T, int64, error) {
	keys := make([]string, 0, len(s.rows))
	for k, row := range s.rows {
		if matches(PT(row).EntityKey(), shared.Key(filter.Filters)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	total := int64(len(keys))

	if filter.PageSize > 0 {
		start := (filter.Page - 1) * filter.PageSize
		if start < 0 {
			start = 0
		}
		if start > len(keys) {
			start = len(keys)
		}
		end := start + filter.PageSize
		if end > len(keys) {
			end = len(keys)
		}
		keys = keys[start:end]
	}

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, *s.rows[k])
	}
	return out, total, nil
}

func matches(key, where shared.Key) bool {
	for col, want := range where {
		if key[col] != want {
			return false
		}
	}
	return true
}

type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixture struct {
	invoices *memStore[billing.Invoice, *billing.Invoice]
	details  *memStore[billing.InvoiceDetail, *billing.InvoiceDetail]
	payments *memStore[billing.InvoicePayment, *billing.InvoicePayment]
	svc      *InvoiceService
}

func newFixture() *fixture {
	f := &fixture{
		invoices: newMemStore[billing.Invoice](),
		details:  newMemStore[billing.InvoiceDetail](),
		payments: newMemStore[billing.InvoicePayment](),
	}
	customers := newMemStore[partner.Customer]()
	customers.put(&partner.Customer{Code: 100, Name: "Acme Retail SL"})
	salespeople := newMemStore[partner.Salesperson]()
	salespeople.put(&partner.Salesperson{Code: 5, Name: "Laura"})
	methods := newMemStore[partner.PaymentMethod]()
	methods.put(&partner.PaymentMethod{Code: 1, Description: "Cash"})
	methods.put(&partner.PaymentMethod{Code: 2, Description: "Card"})
	articles := newMemStore[catalog.Article]()
	articles.put(&catalog.Article{Code: 1001, Description: "Linen shirt", TaxType: 1})
	taxes := newMemStore[catalog.Tax]()
	taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})

	f.svc = NewInvoiceService(InvoiceServiceDeps{
		Invoices:    f.invoices,
		Details:     f.details,
		Payments:    f.payments,
		Customers:   customers,
		Salespeople: salespeople,
		Methods:     methods,
		Articles:    articles,
		Taxes:       taxes,
	}, passTx{}, fixedClock{now: time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)}, zap.NewNop())
	return f
}

func baseInput() InvoiceAggregateInput {
	return InvoiceAggregateInput{
		Invoice: InvoiceInput{
			Series:       "A",
			Number:       12,
			Suffix:       1,
			Date:         time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			CustomerCode: 100,
		},
		Lines: []InvoiceLineInput{
			{
				LineNumber:  1,
				ArticleCode: 1001,
				Size:        "M",
				Color:       "RED",
				Description: "Linen shirt",
				Units:       decimal.NewFromInt(2),
				Price:       decimal.NewFromInt(10),
				TaxType:     1,
			},
		},
	}
}

func TestInvoiceSyncComputesTotals(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Sync(context.Background(), baseInput())
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, 1, result.LineCount)

	// 2 x 10.00 tax inclusive at 21%: tax portion is 20*21/121
	assert.True(t, result.Totals.Gross.Equal(decimal.NewFromInt(20)))
	assert.True(t, result.Totals.Net.Equal(decimal.NewFromInt(20)))
	assert.True(t, result.Totals.Discount.IsZero())
	assert.True(t, result.Totals.Tax.Equal(decimal.NewFromFloat(3.47)))
}

func TestInvoiceSyncRequiresLines(t *testing.T) {
	f := newFixture()
	input := baseInput()
	input.Lines = nil

	_, err := f.svc.Sync(context.Background(), input)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestInvoiceSyncAcceptsDeclaredTotalsWithinTolerance(t *testing.T) {
	f := newFixture()
	input := baseInput()
	input.Invoice.GrossTotal = decimal.NewFromFloat(20.01)
	input.Invoice.NetTotal = decimal.NewFromFloat(20.01)
	input.Invoice.TaxTotal = decimal.NewFromFloat(3.47)

	_, err := f.svc.Sync(context.Background(), input)
	assert.NoError(t, err)
}

func TestInvoiceSyncRejectsInconsistentTotals(t *testing.T) {
	f := newFixture()
	input := baseInput()
	input.Invoice.GrossTotal = decimal.NewFromInt(20)
	input.Invoice.NetTotal = decimal.NewFromInt(25)
	input.Invoice.TaxTotal = decimal.NewFromFloat(3.47)

	_, err := f.svc.Sync(context.Background(), input)
	assert.True(t, shared.IsCode(err, shared.CodeConsistency))
	assert.Contains(t, err.Error(), "TOTNETO")
}

func TestInvoiceSyncRejectsInconsistentLineTotal(t *testing.T) {
	f := newFixture()
	input := baseInput()
	input.Lines[0].LineTotal = decimal.NewFromFloat(25.50)

	_, err := f.svc.Sync(context.Background(), input)
	assert.True(t, shared.IsCode(err, shared.CodeConsistency))
	assert.Contains(t, err.Error(), "line 1")
}

func TestInvoiceSyncMissingCustomer(t *testing.T) {
	f := newFixture()
	input := baseInput()
	input.Invoice.CustomerCode = 999

	_, err := f.svc.Sync(context.Background(), input)
	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Contains(t, batchErr.Items[0].Err.Message, "referenced Customer (codcliente=999) does not exist")
}

func TestInvoiceSyncDuplicateLineNumbers(t *testing.T) {
	f := newFixture()
	input := baseInput()
	input.Lines = append(input.Lines, input.Lines[0])

	_, err := f.svc.Sync(context.Background(), input)
	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, shared.CodeDuplicateKey, batchErr.Items[0].Err.Code)
}

func TestInvoiceSyncPaymentsMustCoverNet(t *testing.T) {
	f := newFixture()
	input := baseInput()
	input.Payments = []InvoicePaymentInput{
		{Position: 1, PaymentMethodCode: 1, Amount: decimal.NewFromInt(5), DueDate: time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)},
	}

	_, err := f.svc.Sync(context.Background(), input)
	assert.True(t, shared.IsCode(err, shared.CodeConsistency))
	assert.Contains(t, err.Error(), "does not cover")
}

func TestInvoiceSyncSplitPayment(t *testing.T) {
	f := newFixture()
	input := baseInput()
	due := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)
	input.Payments = []InvoicePaymentInput{
		{Position: 1, PaymentMethodCode: 1, Amount: decimal.NewFromInt(12), DueDate: due},
		{Position: 2, PaymentMethodCode: 2, Amount: decimal.NewFromInt(8), DueDate: due.AddDate(0, 1, 0)},
	}

	result, err := f.svc.Sync(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PaymentCount)
	assert.True(t, result.SplitPayment)
}

func TestInvoiceResubmitDropsRemovedLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := baseInput()
	input.Lines = append(input.Lines, InvoiceLineInput{
		LineNumber:  2,
		ArticleCode: 1001,
		Size:        "L",
		Color:       "RED",
		Description: "Linen shirt",
		Units:       decimal.NewFromInt(1),
		Price:       decimal.NewFromInt(10),
		TaxType:     1,
	})
	_, err := f.svc.Sync(ctx, input)
	require.NoError(t, err)
	assert.Len(t, f.details.rows, 2)

	resubmit := baseInput()
	result, err := f.svc.Sync(ctx, resubmit)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Len(t, f.details.rows, 1)
}

func TestInvoiceResubmitPrunesBeyondOnePage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// more stored lines than one listing page holds
	input := baseInput()
	input.Lines = nil
	for i := 1; i <= 220; i++ {
		input.Lines = append(input.Lines, InvoiceLineInput{
			LineNumber:  i,
			ArticleCode: 1001,
			Description: "Linen shirt",
			Units:       decimal.NewFromInt(1),
			Price:       decimal.NewFromInt(10),
			TaxType:     1,
		})
	}
	_, err := f.svc.Sync(ctx, input)
	require.NoError(t, err)
	assert.Len(t, f.details.rows, 220)

	resubmit := baseInput()
	_, err = f.svc.Sync(ctx, resubmit)
	require.NoError(t, err)
	assert.Len(t, f.details.rows, 1)
}

func TestInvoiceGetAssemblesAggregate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := baseInput()
	due := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)
	input.Payments = []InvoicePaymentInput{
		{Position: 1, PaymentMethodCode: 1, Amount: decimal.NewFromInt(20), DueDate: due},
	}
	_, err := f.svc.Sync(ctx, input)
	require.NoError(t, err)

	view, err := f.svc.Get(ctx, "A", 12, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, view.CustomerCode)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 1001, view.Lines[0].ArticleCode)
	require.Len(t, view.Payments, 1)
	assert.True(t, view.Payments[0].Amount.Equal(decimal.NewFromInt(20)))
}

func TestInvoiceDeleteCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Sync(ctx, baseInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "A", 12, 1))
	assert.Empty(t, f.invoices.rows)
	assert.Empty(t, f.details.rows)

	_, err = f.svc.Get(ctx, "A", 12, 1)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}

func boolPtr(b bool) *bool { return &b }

func TestInvoiceSyncValidateTotalsOffAcceptsDeclared(t *testing.T) {
	f := newFixture()
	input := baseInput()
	input.Invoice.GrossTotal = decimal.NewFromInt(20)
	input.Invoice.NetTotal = decimal.NewFromInt(25)
	input.Invoice.TaxTotal = decimal.NewFromFloat(3.47)
	input.Options = InvoiceSyncOptions{ValidateTotals: boolPtr(false)}

	result, err := f.svc.Sync(context.Background(), input)
	require.NoError(t, err)
	// declared totals land untouched
	assert.True(t, result.Totals.Net.Equal(decimal.NewFromInt(25)))
}

func TestInvoiceSyncWithoutAutomaticTotalsRejectsZeroHeader(t *testing.T) {
	f := newFixture()
	input := baseInput()
	input.Options = InvoiceSyncOptions{CalculateTotalsAutomatic: boolPtr(false)}

	// all-zero header is no longer auto-filled and fails the cross-check
	_, err := f.svc.Sync(context.Background(), input)
	assert.True(t, shared.IsCode(err, shared.CodeConsistency))
}
