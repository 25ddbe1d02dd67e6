// Package partner implements the application services for the partner
// side of the synchronization engine: customers, salespeople and
// payment methods.
package partner

import (
	"context"

	"github.com/erpsync/backend/internal/application/sync"
	"github.com/erpsync/backend/internal/domain/billing"
	"github.com/erpsync/backend/internal/domain/partner"
	"github.com/erpsync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService synchronizes customers
type CustomerService struct {
	customers shared.EntityStore[partner.Customer]
	invoices  shared.EntityStore[billing.Invoice]
	coord     *sync.Coordinator[partner.Customer, *partner.Customer]
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customers shared.EntityStore[partner.Customer],
	invoices shared.EntityStore[billing.Invoice],
	tx shared.TxManager,
	clock shared.Clock,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customers: customers,
		invoices:  invoices,
		coord:     sync.NewCoordinator[partner.Customer](customers, tx, clock, logger),
	}
}

// Sync applies one customer batch
func (s *CustomerService) Sync(ctx context.Context, inputs []CustomerInput) (*sync.BatchResult, error) {
	items := make([]*partner.Customer, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToEntity()
	}
	return s.coord.Upsert(ctx, items)
}

// Get returns one customer by code
func (s *CustomerService) Get(ctx context.Context, code int) (*CustomerView, error) {
	customer, err := s.customers.Find(ctx, shared.Key{"codcliente": code})
	if err != nil {
		return nil, err
	}
	return newCustomerView(customer), nil
}

// List returns a page of customers
func (s *CustomerService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[CustomerView], error) {
	filter.Normalize()
	rows, total, err := s.customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]CustomerView, len(rows))
	for i := range rows {
		views[i] = *newCustomerView(&rows[i])
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes a customer with no invoices
func (s *CustomerService) Delete(ctx context.Context, code int) error {
	key := shared.Key{"codcliente": code}
	if _, err := s.customers.Find(ctx, key); err != nil {
		return err
	}
	linked, err := s.invoices.Count(ctx, key)
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewConsistencyError("customer %d still has %d invoices", code, linked)
	}
	return s.customers.Delete(ctx, key)
}

// SalespersonService synchronizes salespeople
type SalespersonService struct {
	salespeople shared.EntityStore[partner.Salesperson]
	invoices    shared.EntityStore[billing.Invoice]
	coord       *sync.Coordinator[partner.Salesperson, *partner.Salesperson]
}

// NewSalespersonService creates a new SalespersonService
func NewSalespersonService(
	salespeople shared.EntityStore[partner.Salesperson],
	invoices shared.EntityStore[billing.Invoice],
	tx shared.TxManager,
	clock shared.Clock,
	logger *zap.Logger,
) *SalespersonService {
	return &SalespersonService{
		salespeople: salespeople,
		invoices:    invoices,
		coord:       sync.NewCoordinator[partner.Salesperson](salespeople, tx, clock, logger),
	}
}

// Sync applies one salesperson batch
func (s *SalespersonService) Sync(ctx context.Context, inputs []SalespersonInput) (*sync.BatchResult, error) {
	items := make([]*partner.Salesperson, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToEntity()
	}
	return s.coord.Upsert(ctx, items)
}

// Get returns one salesperson by code
func (s *SalespersonService) Get(ctx context.Context, code int) (*SalespersonView, error) {
	sp, err := s.salespeople.Find(ctx, shared.Key{"codvendedor": code})
	if err != nil {
		return nil, err
	}
	return newSalespersonView(sp), nil
}

// List returns a page of salespeople
func (s *SalespersonService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[SalespersonView], error) {
	filter.Normalize()
	rows, total, err := s.salespeople.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]SalespersonView, len(rows))
	for i := range rows {
		views[i] = *newSalespersonView(&rows[i])
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes a salesperson with no invoices
func (s *SalespersonService) Delete(ctx context.Context, code int) error {
	key := shared.Key{"codvendedor": code}
	if _, err := s.salespeople.Find(ctx, key); err != nil {
		return err
	}
	linked, err := s.invoices.Count(ctx, key)
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewConsistencyError("salesperson %d still has %d invoices", code, linked)
	}
	return s.salespeople.Delete(ctx, key)
}

// PaymentMethodService synchronizes payment methods
type PaymentMethodService struct {
	methods  shared.EntityStore[partner.PaymentMethod]
	payments shared.EntityStore[billing.InvoicePayment]
	coord    *sync.Coordinator[partner.PaymentMethod, *partner.PaymentMethod]
}

// NewPaymentMethodService creates a new PaymentMethodService
func NewPaymentMethodService(
	methods shared.EntityStore[partner.PaymentMethod],
	payments shared.EntityStore[billing.InvoicePayment],
	tx shared.TxManager,
	clock shared.Clock,
	logger *zap.Logger,
) *PaymentMethodService {
	return &PaymentMethodService{
		methods:  methods,
		payments: payments,
		coord:    sync.NewCoordinator[partner.PaymentMethod](methods, tx, clock, logger),
	}
}

// Sync applies one payment method batch
func (s *PaymentMethodService) Sync(ctx context.Context, inputs []PaymentMethodInput) (*sync.BatchResult, error) {
	items := make([]*partner.PaymentMethod, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToEntity()
	}
	return s.coord.Upsert(ctx, items)
}

// Get returns one payment method by code
func (s *PaymentMethodService) Get(ctx context.Context, code int) (*PaymentMethodView, error) {
	method, err := s.methods.Find(ctx, shared.Key{"codformapago": code})
	if err != nil {
		return nil, err
	}
	return newPaymentMethodView(method), nil
}

// List returns a page of payment methods
func (s *PaymentMethodService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[PaymentMethodView], error) {
	filter.Normalize()
	rows, total, err := s.methods.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]PaymentMethodView, len(rows))
	for i := range rows {
		views[i] = *newPaymentMethodView(&rows[i])
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes a payment method not referenced by any invoice payment
func (s *PaymentMethodService) Delete(ctx context.Context, code int) error {
	key := shared.Key{"codformapago": code}
	if _, err := s.methods.Find(ctx, key); err != nil {
		return err
	}
	linked, err := s.payments.Count(ctx, key)
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewConsistencyError("payment method %d is still referenced by %d invoice payments", code, linked)
	}
	return s.methods.Delete(ctx, key)
}
