// Package billing implements the invoice aggregate builder: one call
// lands an invoice header, its lines and its payment schedule in a
// single transaction, with cross-checked totals.
package billing

import (
	"context"
	"errors"

	"github.com/erpsync/backend/internal/application/sync"
	"github.com/erpsync/backend/internal/domain/billing"
	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/partner"
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// totalTolerance absorbs the rounding drift of ERP exports whose line
// totals were rounded before summing
var totalTolerance = decimal.NewFromFloat(0.01)

// InvoiceServiceDeps bundles the stores the invoice aggregate touches
type InvoiceServiceDeps struct {
	Invoices    shared.EntityStore[billing.Invoice]
	Details     shared.EntityStore[billing.InvoiceDetail]
	Payments    shared.EntityStore[billing.InvoicePayment]
	Customers   shared.EntityStore[partner.Customer]
	Salespeople shared.EntityStore[partner.Salesperson]
	Methods     shared.EntityStore[partner.PaymentMethod]
	Articles    shared.EntityStore[catalog.Article]
	Taxes       shared.EntityStore[catalog.Tax]
}

// InvoiceService builds invoice aggregates. Validation flattens the
// aggregate into header, then lines, then payments, and item positions
// in error messages follow that order.
type InvoiceService struct {
	deps   InvoiceServiceDeps
	tx     shared.TxManager
	clock  shared.Clock
	logger *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(deps InvoiceServiceDeps, tx shared.TxManager, clock shared.Clock, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{deps: deps, tx: tx, clock: clock, logger: logger}
}

// Sync applies one complete invoice aggregate. Header totals left at
// zero are derived from the lines; declared totals are cross-checked
// against the lines within a one-cent tolerance.
func (s *InvoiceService) Sync(ctx context.Context, input InvoiceAggregateInput) (*InvoiceAggregateResult, error) {
	invoice := input.Invoice.ToEntity()

	lines := make([]*billing.InvoiceDetail, len(input.Lines))
	for i, in := range input.Lines {
		lines[i] = in.ToEntity(invoice.Series, invoice.Number, invoice.Suffix)
	}
	payments := make([]*billing.InvoicePayment, len(input.Payments))
	for i, in := range input.Payments {
		payments[i] = in.ToEntity(invoice.Series, invoice.Number, invoice.Suffix)
	}

	if len(lines) == 0 {
		return nil, shared.NewValidationError("invoice %s-%d needs at least one line", invoice.Series, invoice.Number)
	}

	if err := s.validateAggregate(ctx, invoice, lines, payments, input.Options); err != nil {
		return nil, err
	}

	result, err := s.apply(ctx, invoice, lines, payments)
	if err != nil && shared.IsCode(err, shared.CodeTransient) {
		s.logger.Warn("transient storage failure, retrying invoice aggregate",
			zap.String("series", invoice.Series),
			zap.Int("number", invoice.Number))
		result, err = s.apply(ctx, invoice, lines, payments)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice aggregate applied",
		zap.String("series", invoice.Series),
		zap.Int("number", invoice.Number),
		zap.Int("lines", len(lines)),
		zap.Int("payments", len(payments)))
	return result, nil
}

func (s *InvoiceService) validateAggregate(ctx context.Context, invoice *billing.Invoice, lines []*billing.InvoiceDetail, payments []*billing.InvoicePayment, opts InvoiceSyncOptions) error {
	batchErr := &shared.BatchError{}
	pos := 0

	if err := invoice.Validate(); err != nil {
		batchErr.Add(pos, toDomainError(err))
	} else if err := s.validateHeaderRefs(ctx, invoice, batchErr, pos); err != nil {
		return err
	}
	pos++

	taxRates := make(map[int]decimal.Decimal)
	lineNumbers := make(map[int]struct{}, len(lines))
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			batchErr.Add(pos, toDomainError(err))
			pos++
			continue
		}
		if _, dup := lineNumbers[line.LineNumber]; dup {
			batchErr.Add(pos, shared.NewDuplicateKeyError(line.EntityName(), line.EntityKey()))
			pos++
			continue
		}
		lineNumbers[line.LineNumber] = struct{}{}

		if err := s.validateLineRefs(ctx, line, taxRates, batchErr, pos); err != nil {
			return err
		}
		pos++
	}

	positions := make(map[int]struct{}, len(payments))
	for _, payment := range payments {
		if err := payment.Validate(); err != nil {
			batchErr.Add(pos, toDomainError(err))
			pos++
			continue
		}
		if _, dup := positions[payment.Position]; dup {
			batchErr.Add(pos, shared.NewDuplicateKeyError(payment.EntityName(), payment.EntityKey()))
			pos++
			continue
		}
		positions[payment.Position] = struct{}{}

		found, err := s.deps.Methods.Exists(ctx, payment.PaymentMethodKey())
		if err != nil {
			return err
		}
		if !found {
			batchErr.Add(pos, shared.NewMissingParentError("PaymentMethod", payment.PaymentMethodKey()))
		}
		pos++
	}

	if batchErr.HasErrors() {
		return batchErr
	}

	if err := s.reconcileTotals(invoice, lines, payments, taxRates, opts); err != nil {
		return err
	}
	return nil
}

func (s *InvoiceService) validateHeaderRefs(ctx context.Context, invoice *billing.Invoice, batchErr *shared.BatchError, pos int) error {
	found, err := s.deps.Customers.Exists(ctx, invoice.CustomerKey())
	if err != nil {
		return err
	}
	if !found {
		batchErr.Add(pos, shared.NewMissingParentError("Customer", invoice.CustomerKey()))
	}

	if key, ok := invoice.SalespersonKey(); ok {
		found, err := s.deps.Salespeople.Exists(ctx, key)
		if err != nil {
			return err
		}
		if !found {
			batchErr.Add(pos, shared.NewMissingParentError("Salesperson", key))
		}
	}
	return nil
}

// validateLineRefs checks the line's article and tax and memoizes the
// tax rate for the totals reconciliation
func (s *InvoiceService) validateLineRefs(ctx context.Context, line *billing.InvoiceDetail, taxRates map[int]decimal.Decimal, batchErr *shared.BatchError, pos int) error {
	found, err := s.deps.Articles.Exists(ctx, line.ArticleKey())
	if err != nil {
		return err
	}
	if !found {
		batchErr.Add(pos, shared.NewMissingParentError("Article", line.ArticleKey()))
	}

	if _, ok := taxRates[line.TaxType]; ok {
		return nil
	}
	tax, err := s.deps.Taxes.Find(ctx, line.TaxKey())
	if err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			batchErr.Add(pos, shared.NewMissingParentError("Tax", line.TaxKey()))
			return nil
		}
		return err
	}
	taxRates[line.TaxType] = tax.Rate
	return nil
}

// reconcileTotals fills in missing line and header totals from the line
// data and rejects declared totals that disagree beyond the tolerance.
// Prices are tax inclusive; the tax total is the portion of the net
// total attributable to each line's rate.
func (s *InvoiceService) reconcileTotals(invoice *billing.Invoice, lines []*billing.InvoiceDetail, payments []*billing.InvoicePayment, taxRates map[int]decimal.Decimal, opts InvoiceSyncOptions) error {
	gross := decimal.Zero
	net := decimal.Zero
	tax := decimal.Zero

	for _, line := range lines {
		computed := line.ComputeLineTotal()
		if line.LineTotal.IsZero() {
			line.LineTotal = computed
		} else if opts.validateTotals() && line.LineTotal.Sub(computed).Abs().GreaterThan(totalTolerance) {
			return shared.NewConsistencyError(
				"line %d total %s does not match computed %s",
				line.LineNumber, line.LineTotal.StringFixed(2), computed.StringFixed(2))
		}

		gross = gross.Add(line.Units.Mul(line.Price))
		net = net.Add(line.LineTotal)

		rate := taxRates[line.TaxType]
		divisor := decimal.NewFromInt(100).Add(rate)
		tax = tax.Add(line.LineTotal.Mul(rate).DivRound(divisor, 2))
	}
	gross = gross.Round(2)
	discount := gross.Sub(net).Round(2)

	computed := InvoiceTotals{Gross: gross, Tax: tax, Discount: discount, Net: net}
	declared := InvoiceTotals{
		Gross:    invoice.GrossTotal,
		Tax:      invoice.TaxTotal,
		Discount: invoice.DiscountTotal,
		Net:      invoice.NetTotal,
	}

	allZero := declared.Gross.IsZero() && declared.Tax.IsZero() &&
		declared.Discount.IsZero() && declared.Net.IsZero()
	if allZero && opts.calculateTotals() {
		invoice.GrossTotal = computed.Gross
		invoice.TaxTotal = computed.Tax
		invoice.DiscountTotal = computed.Discount
		invoice.NetTotal = computed.Net
	} else if opts.validateTotals() {
		checks := []struct {
			name               string
			declared, computed decimal.Decimal
		}{
			{"TOTBRUTO", declared.Gross, computed.Gross},
			{"TOTALIMPUESTOS", declared.Tax, computed.Tax},
			{"TOTDTOCOMERCIAL", declared.Discount, computed.Discount},
			{"TOTNETO", declared.Net, computed.Net},
		}
		for _, c := range checks {
			if c.declared.Sub(c.computed).Abs().GreaterThan(totalTolerance) {
				return shared.NewConsistencyError(
					"%s declared %s does not match computed %s",
					c.name, c.declared.StringFixed(2), c.computed.StringFixed(2))
			}
		}
	}

	if opts.validateTotals() && len(payments) > 0 {
		paid := decimal.Zero
		for _, payment := range payments {
			paid = paid.Add(payment.Amount)
		}
		if paid.Sub(invoice.NetTotal).Abs().GreaterThan(totalTolerance) {
			return shared.NewConsistencyError(
				"payments total %s does not cover invoice net %s",
				paid.StringFixed(2), invoice.NetTotal.StringFixed(2))
		}
	}
	return nil
}

func (s *InvoiceService) apply(ctx context.Context, invoice *billing.Invoice, lines []*billing.InvoiceDetail, payments []*billing.InvoicePayment) (*InvoiceAggregateResult, error) {
	result := &InvoiceAggregateResult{
		Series: invoice.Series,
		Number: invoice.Number,
		Suffix: invoice.Suffix,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()

		created, err := sync.ApplyOne(ctx, s.deps.Invoices, now, invoice)
		if err != nil {
			return err
		}
		result.Created = created

		if err := s.replaceDetails(ctx, invoice, lines); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := sync.ApplyOne(ctx, s.deps.Details, now, line); err != nil {
				return err
			}
		}

		if err := s.replacePayments(ctx, invoice, payments); err != nil {
			return err
		}
		for _, payment := range payments {
			if _, err := sync.ApplyOne(ctx, s.deps.Payments, now, payment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.LineCount = len(lines)
	result.PaymentCount = len(payments)
	result.SplitPayment = len(payments) > 1
	result.Totals = InvoiceTotals{
		Gross:    invoice.GrossTotal,
		Tax:      invoice.TaxTotal,
		Discount: invoice.DiscountTotal,
		Net:      invoice.NetTotal,
	}
	return result, nil
}

// replaceDetails removes stored lines that a resubmitted aggregate no
// longer carries
func (s *InvoiceService) replaceDetails(ctx context.Context, invoice *billing.Invoice, lines []*billing.InvoiceDetail) error {
	keep := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		keep[line.EntityKey().String()] = struct{}{}
	}

	existing, err := s.listDetails(ctx, invoice)
	if err != nil {
		return err
	}
	for i := range existing {
		key := existing[i].EntityKey()
		if _, ok := keep[key.String()]; !ok {
			if err := s.deps.Details.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return nil
}

// replacePayments removes stored payments that a resubmitted aggregate
// no longer carries
func (s *InvoiceService) replacePayments(ctx context.Context, invoice *billing.Invoice, payments []*billing.InvoicePayment) error {
	keep := make(map[string]struct{}, len(payments))
	for _, payment := range payments {
		keep[payment.EntityKey().String()] = struct{}{}
	}

	existing, err := s.listPayments(ctx, invoice)
	if err != nil {
		return err
	}
	for i := range existing {
		key := existing[i].EntityKey()
		if _, ok := keep[key.String()]; !ok {
			if err := s.deps.Payments.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func invoiceFilter(invoice *billing.Invoice) shared.Filter {
	filter := shared.DefaultFilter()
	filter.PageSize = 200
	filter.Filters = map[string]any{
		"numserie":   invoice.Series,
		"numfactura": invoice.Number,
		"n":          invoice.Suffix,
	}
	return filter
}

// listAll pages through every child row of the invoice; large invoices
// exceed one page and truncating here would leave stale rows alive on
// resubmission
func listAll[T any](ctx context.Context, store shared.EntityStore[T], filter shared.Filter) ([]T, error) {
	var all []T
	for {
		rows, total, err := store.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
		if len(rows) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		filter.Page++
	}
}

func (s *InvoiceService) listDetails(ctx context.Context, invoice *billing.Invoice) ([]billing.InvoiceDetail, error) {
	return listAll(ctx, s.deps.Details, invoiceFilter(invoice))
}

func (s *InvoiceService) listPayments(ctx context.Context, invoice *billing.Invoice) ([]billing.InvoicePayment, error) {
	return listAll(ctx, s.deps.Payments, invoiceFilter(invoice))
}

// Get returns one complete invoice by its natural key
func (s *InvoiceService) Get(ctx context.Context, series string, number, suffix int) (*InvoiceView, error) {
	invoice, err := s.deps.Invoices.Find(ctx, shared.Key{
		"numserie":   series,
		"numfactura": number,
		"n":          suffix,
	})
	if err != nil {
		return nil, err
	}

	view := &InvoiceView{
		Series:          invoice.Series,
		Number:          invoice.Number,
		Suffix:          invoice.Suffix,
		Date:            invoice.Date,
		CustomerCode:    invoice.CustomerCode,
		SalespersonCode: invoice.SalespersonCode,
		GrossTotal:      invoice.GrossTotal,
		TaxTotal:        invoice.TaxTotal,
		DiscountTotal:   invoice.DiscountTotal,
		NetTotal:        invoice.NetTotal,
		CreatedAt:       invoice.GetCreatedAt(),
		UpdatedAt:       invoice.GetUpdatedAt(),
	}

	lines, err := s.listDetails(ctx, invoice)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		view.Lines = append(view.Lines, InvoiceLineView{
			LineNumber:  lines[i].LineNumber,
			ArticleCode: lines[i].ArticleCode,
			Size:        lines[i].Size,
			Color:       lines[i].Color,
			Description: lines[i].Description,
			Units:       lines[i].Units,
			Price:       lines[i].Price,
			Discount:    lines[i].Discount,
			TaxType:     lines[i].TaxType,
			LineTotal:   lines[i].LineTotal,
		})
	}

	payments, err := s.listPayments(ctx, invoice)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		view.Payments = append(view.Payments, InvoicePayView{
			Position:          payments[i].Position,
			PaymentMethodCode: payments[i].PaymentMethodCode,
			Amount:            payments[i].Amount,
			DueDate:           payments[i].DueDate,
		})
	}

	return view, nil
}

// List returns a page of invoice headers
func (s *InvoiceService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[InvoiceView], error) {
	filter.Normalize()
	rows, total, err := s.deps.Invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]InvoiceView, len(rows))
	for i := range rows {
		views[i] = InvoiceView{
			Series:          rows[i].Series,
			Number:          rows[i].Number,
			Suffix:          rows[i].Suffix,
			Date:            rows[i].Date,
			CustomerCode:    rows[i].CustomerCode,
			SalespersonCode: rows[i].SalespersonCode,
			GrossTotal:      rows[i].GrossTotal,
			TaxTotal:        rows[i].TaxTotal,
			DiscountTotal:   rows[i].DiscountTotal,
			NetTotal:        rows[i].NetTotal,
			CreatedAt:       rows[i].GetCreatedAt(),
			UpdatedAt:       rows[i].GetUpdatedAt(),
		}
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes an invoice with its lines and payments
func (s *InvoiceService) Delete(ctx context.Context, series string, number, suffix int) error {
	key := shared.Key{"numserie": series, "numfactura": number, "n": suffix}
	invoice, err := s.deps.Invoices.Find(ctx, key)
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		lines, err := s.listDetails(ctx, invoice)
		if err != nil {
			return err
		}
		for i := range lines {
			if err := s.deps.Details.Delete(ctx, lines[i].EntityKey()); err != nil {
				return err
			}
		}

		payments, err := s.listPayments(ctx, invoice)
		if err != nil {
			return err
		}
		for i := range payments {
			if err := s.deps.Payments.Delete(ctx, payments[i].EntityKey()); err != nil {
				return err
			}
		}

		return s.deps.Invoices.Delete(ctx, key)
	})
}

func toDomainError(err error) *shared.DomainError {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	return shared.NewPersistenceError()
}
