package catalog

import (
	"context"
	"errors"

	"github.com/erpsync/backend/internal/application/sync"
	"github.com/erpsync/backend/internal/domain/billing"
	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ArticleService builds article aggregates: the header, its size/color
// variants and its tariff prices land in one transaction. Validation
// flattens the aggregate into header, then lines, then prices, and item
// positions in error messages follow that order.
type ArticleService struct {
	articles     shared.EntityStore[catalog.Article]
	lines        shared.EntityStore[catalog.ArticleLine]
	prices       shared.EntityStore[catalog.Price]
	taxes        shared.EntityStore[catalog.Tax]
	departments  shared.EntityStore[catalog.Department]
	sections     shared.EntityStore[catalog.Section]
	families     shared.EntityStore[catalog.Family]
	tariffs      shared.EntityStore[catalog.Tariff]
	invoiceLines shared.EntityStore[billing.InvoiceDetail]
	tx           shared.TxManager
	clock        shared.Clock
	logger       *zap.Logger
}

// ArticleServiceDeps bundles the stores the article aggregate touches
type ArticleServiceDeps struct {
	Articles     shared.EntityStore[catalog.Article]
	Lines        shared.EntityStore[catalog.ArticleLine]
	Prices       shared.EntityStore[catalog.Price]
	Taxes        shared.EntityStore[catalog.Tax]
	Departments  shared.EntityStore[catalog.Department]
	Sections     shared.EntityStore[catalog.Section]
	Families     shared.EntityStore[catalog.Family]
	Tariffs      shared.EntityStore[catalog.Tariff]
	InvoiceLines shared.EntityStore[billing.InvoiceDetail]
}

// NewArticleService creates a new ArticleService
func NewArticleService(deps ArticleServiceDeps, tx shared.TxManager, clock shared.Clock, logger *zap.Logger) *ArticleService {
	return &ArticleService{
		articles:     deps.Articles,
		lines:        deps.Lines,
		prices:       deps.Prices,
		taxes:        deps.Taxes,
		departments:  deps.Departments,
		sections:     deps.Sections,
		families:     deps.Families,
		tariffs:      deps.Tariffs,
		invoiceLines: deps.InvoiceLines,
		tx:           tx,
		clock:        clock,
		logger:       logger,
	}
}

// Sync applies one complete article aggregate. Unless autoCreateLines
// is switched off, an article with no variants gets the default
// empty-variant line, so every article is sellable right after sync,
// and variants only referenced by prices are synthesized. Stored
// variants and prices the aggregate no longer carries are removed.
// With validateIntegrity on, the derived price statistics are
// recomputed into the result; the switch never blocks the write.
func (s *ArticleService) Sync(ctx context.Context, input ArticleAggregateInput) (*ArticleAggregateResult, error) {
	article := input.Article.ToEntity()
	opts := input.Options

	lines := make([]*catalog.ArticleLine, len(input.Lines))
	for i, in := range input.Lines {
		lines[i] = in.ToEntity(article.Code)
	}
	defaultLine := opts.autoCreateLines() && len(lines) == 0
	if defaultLine {
		lines = []*catalog.ArticleLine{{ArticleCode: article.Code}}
	}

	prices := make([]*catalog.Price, len(input.Prices))
	for i, in := range input.Prices {
		prices[i] = in.ToEntity(article.Code)
	}

	if opts.autoCreateLines() {
		lines = append(lines, synthesizeLines(article.Code, lines, prices)...)
	}

	if err := s.validateAggregate(ctx, article, lines, prices); err != nil {
		return nil, err
	}

	result, err := s.apply(ctx, article, lines, prices)
	if err != nil && shared.IsCode(err, shared.CodeTransient) {
		s.logger.Warn("transient storage failure, retrying article aggregate",
			zap.Int("article", article.Code))
		result, err = s.apply(ctx, article, lines, prices)
	}
	if err != nil {
		return nil, err
	}

	result.DefaultLine = defaultLine
	result.Discontinued = article.Discontinued
	if opts.validateIntegrity() {
		result.LineCount = len(lines)
		result.PriceCount = len(prices)
		fillPriceStats(result, prices)
	}

	s.logger.Info("article aggregate applied",
		zap.Int("article", article.Code),
		zap.Int("lines", len(lines)),
		zap.Int("prices", len(prices)))
	return result, nil
}

// synthesizeLines returns one generated variant line per price whose
// size/color the aggregate does not declare
func synthesizeLines(articleCode int, lines []*catalog.ArticleLine, prices []*catalog.Price) []*catalog.ArticleLine {
	declared := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		declared[line.EntityKey().String()] = struct{}{}
	}

	var generated []*catalog.ArticleLine
	for _, price := range prices {
		line := &catalog.ArticleLine{ArticleCode: articleCode, Size: price.Size, Color: price.Color}
		vk := line.EntityKey().String()
		if _, ok := declared[vk]; ok {
			continue
		}
		declared[vk] = struct{}{}
		generated = append(generated, line)
	}
	return generated
}

// validateAggregate runs shape, duplicate and reference checks over the
// flattened aggregate, collecting every violation
func (s *ArticleService) validateAggregate(ctx context.Context, article *catalog.Article, lines []*catalog.ArticleLine, prices []*catalog.Price) error {
	batchErr := &shared.BatchError{}
	pos := 0

	if err := article.Validate(); err != nil {
		batchErr.Add(pos, toDomainError(err))
	} else if err := s.validateArticleRefs(ctx, article, batchErr, pos); err != nil {
		return err
	}
	pos++

	variants := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			batchErr.Add(pos, toDomainError(err))
			pos++
			continue
		}
		vk := line.EntityKey().String()
		if _, dup := variants[vk]; dup {
			batchErr.Add(pos, shared.NewDuplicateKeyError(line.EntityName(), line.EntityKey()))
			pos++
			continue
		}
		variants[vk] = struct{}{}
		pos++
	}

	priceKeys := make(map[string]struct{}, len(prices))
	for _, price := range prices {
		if err := price.Validate(); err != nil {
			batchErr.Add(pos, toDomainError(err))
			pos++
			continue
		}
		pk := price.EntityKey().String()
		if _, dup := priceKeys[pk]; dup {
			batchErr.Add(pos, shared.NewDuplicateKeyError(price.EntityName(), price.EntityKey()))
			pos++
			continue
		}
		priceKeys[pk] = struct{}{}

		if err := s.validatePriceRefs(ctx, price, variants, batchErr, pos); err != nil {
			return err
		}
		pos++
	}

	if batchErr.HasErrors() {
		return batchErr
	}
	return nil
}

func (s *ArticleService) validateArticleRefs(ctx context.Context, article *catalog.Article, batchErr *shared.BatchError, pos int) error {
	type parent struct {
		entity string
		key    shared.Key
		exists sync.ExistsFunc
	}

	refs := []parent{{"Tax", article.TaxKey(), sync.StoreExists(s.taxes)}}
	if key, ok := article.DepartmentKey(); ok {
		refs = append(refs, parent{"Department", key, sync.StoreExists(s.departments)})
	}
	if key, ok := article.SectionKey(); ok {
		refs = append(refs, parent{"Section", key, sync.StoreExists(s.sections)})
	}
	if key, ok := article.FamilyKey(); ok {
		refs = append(refs, parent{"Family", key, sync.StoreExists(s.families)})
	}

	for _, ref := range refs {
		found, err := ref.exists(ctx, ref.key)
		if err != nil {
			return err
		}
		if !found {
			batchErr.Add(pos, shared.NewMissingParentError(ref.entity, ref.key))
		}
	}
	return nil
}

// validatePriceRefs checks the price's tariff against storage and its
// variant against the lines of this aggregate or already stored lines
func (s *ArticleService) validatePriceRefs(ctx context.Context, price *catalog.Price, variants map[string]struct{}, batchErr *shared.BatchError, pos int) error {
	found, err := s.tariffs.Exists(ctx, price.TariffKey())
	if err != nil {
		return err
	}
	if !found {
		batchErr.Add(pos, shared.NewMissingParentError("Tariff", price.TariffKey()))
		return nil
	}

	variantKey := shared.Key{"codarticulo": price.ArticleCode, "talla": price.Size, "color": price.Color}
	if _, ok := variants[variantKey.String()]; ok {
		return nil
	}
	stored, err := s.lines.Exists(ctx, variantKey)
	if err != nil {
		return err
	}
	if !stored {
		batchErr.Add(pos, shared.NewConsistencyError(
			"price for variant (%s) has no matching article line", variantKey))
	}
	return nil
}

func (s *ArticleService) apply(ctx context.Context, article *catalog.Article, lines []*catalog.ArticleLine, prices []*catalog.Price) (*ArticleAggregateResult, error) {
	result := &ArticleAggregateResult{ArticleCode: article.Code}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()

		created, err := sync.ApplyOne(ctx, s.articles, now, article)
		if err != nil {
			return err
		}
		result.Created = created

		if err := s.replaceLines(ctx, article.Code, lines, prices); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := sync.ApplyOne(ctx, s.lines, now, line); err != nil {
				return err
			}
		}

		if err := s.replacePrices(ctx, article.Code, prices); err != nil {
			return err
		}
		for _, price := range prices {
			if _, err := sync.ApplyOne(ctx, s.prices, now, price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// replaceLines removes stored variants a resubmitted aggregate no
// longer carries. Variants still referenced by submitted prices stay:
// the price check accepted them against storage.
func (s *ArticleService) replaceLines(ctx context.Context, articleCode int, lines []*catalog.ArticleLine, prices []*catalog.Price) error {
	keep := make(map[string]struct{}, len(lines)+len(prices))
	for _, line := range lines {
		keep[line.EntityKey().String()] = struct{}{}
	}
	for _, price := range prices {
		vk := shared.Key{"codarticulo": price.ArticleCode, "talla": price.Size, "color": price.Color}
		keep[vk.String()] = struct{}{}
	}

	existing, err := s.listLines(ctx, articleCode)
	if err != nil {
		return err
	}
	for i := range existing {
		key := existing[i].EntityKey()
		if _, ok := keep[key.String()]; !ok {
			if err := s.lines.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return nil
}

// replacePrices removes stored prices a resubmitted aggregate no longer
// carries
func (s *ArticleService) replacePrices(ctx context.Context, articleCode int, prices []*catalog.Price) error {
	keep := make(map[string]struct{}, len(prices))
	for _, price := range prices {
		keep[price.EntityKey().String()] = struct{}{}
	}

	existing, err := s.listPrices(ctx, articleCode)
	if err != nil {
		return err
	}
	for i := range existing {
		key := existing[i].EntityKey()
		if _, ok := keep[key.String()]; !ok {
			if err := s.prices.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func articleFilter(code int) shared.Filter {
	filter := shared.DefaultFilter()
	filter.PageSize = 200
	filter.Filters = map[string]any{"codarticulo": code}
	return filter
}

// listLines pages through every stored variant of the article; large
// size/color matrices exceed one page
func (s *ArticleService) listLines(ctx context.Context, code int) ([]catalog.ArticleLine, error) {
	filter := articleFilter(code)
	var all []catalog.ArticleLine
	for {
		rows, total, err := s.lines.List(ctx, filter)
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

func (s *ArticleService) listPrices(ctx context.Context, code int) ([]catalog.Price, error) {
	filter := articleFilter(code)
	var all []catalog.Price
	for {
		rows, total, err := s.prices.List(ctx, filter)
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

// fillPriceStats derives the aggregate's price statistics: distinct
// tariff count and min/max/average net price rounded to cents
func fillPriceStats(result *ArticleAggregateResult, prices []*catalog.Price) {
	if len(prices) == 0 {
		return
	}

	tariffs := make(map[int]struct{}, len(prices))
	min, max := prices[0].NetPrice, prices[0].NetPrice
	total := decimal.Zero
	for _, price := range prices {
		tariffs[price.TariffID] = struct{}{}
		if price.NetPrice.LessThan(min) {
			min = price.NetPrice
		}
		if price.NetPrice.GreaterThan(max) {
			max = price.NetPrice
		}
		total = total.Add(price.NetPrice)
	}
	avg := total.Div(decimal.NewFromInt(int64(len(prices)))).Round(2)

	result.TariffCount = len(tariffs)
	result.MinNetPrice = &min
	result.MaxNetPrice = &max
	result.AvgNetPrice = &avg
}

// Get returns one article with its variants and prices
func (s *ArticleService) Get(ctx context.Context, code int) (*ArticleView, error) {
	article, err := s.articles.Find(ctx, shared.Key{"codarticulo": code})
	if err != nil {
		return nil, err
	}

	view := &ArticleView{
		Code:              article.Code,
		Description:       article.Description,
		TaxType:           article.TaxType,
		DepartmentNumber:  article.DepartmentNumber,
		SectionNumber:     article.SectionNumber,
		FamilyNumber:      article.FamilyNumber,
		SupplierReference: article.SupplierReference,
		Discontinued:      article.Discontinued,
		CreatedAt:         article.GetCreatedAt(),
		UpdatedAt:         article.GetUpdatedAt(),
	}

	lines, err := s.listLines(ctx, code)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		view.Lines = append(view.Lines, ArticleLineView{
			Size:         lines[i].Size,
			Color:        lines[i].Color,
			Barcode:      lines[i].Barcode,
			Discontinued: lines[i].Discontinued,
		})
	}

	prices, err := s.listPrices(ctx, code)
	if err != nil {
		return nil, err
	}
	for i := range prices {
		view.Prices = append(view.Prices, ArticlePriceView{
			TariffID:   prices[i].TariffID,
			Size:       prices[i].Size,
			Color:      prices[i].Color,
			GrossPrice: prices[i].GrossPrice,
			Discount:   prices[i].Discount,
			NetPrice:   prices[i].NetPrice,
		})
	}

	return view, nil
}

// List returns a page of article headers
func (s *ArticleService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[ArticleView], error) {
	filter.Normalize()
	rows, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]ArticleView, len(rows))
	for i := range rows {
		views[i] = ArticleView{
			Code:              rows[i].Code,
			Description:       rows[i].Description,
			TaxType:           rows[i].TaxType,
			DepartmentNumber:  rows[i].DepartmentNumber,
			SectionNumber:     rows[i].SectionNumber,
			FamilyNumber:      rows[i].FamilyNumber,
			SupplierReference: rows[i].SupplierReference,
			Discontinued:      rows[i].Discontinued,
			CreatedAt:         rows[i].GetCreatedAt(),
			UpdatedAt:         rows[i].GetUpdatedAt(),
		}
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes an article not referenced by any invoice line, along
// with its variants and prices
func (s *ArticleService) Delete(ctx context.Context, code int) error {
	key := shared.Key{"codarticulo": code}
	if _, err := s.articles.Find(ctx, key); err != nil {
		return err
	}
	linked, err := s.invoiceLines.Count(ctx, key)
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewConsistencyError("article %d is still referenced by %d invoice lines", code, linked)
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.prices.Delete(ctx, key); err != nil && !shared.IsCode(err, shared.CodeNotFound) {
			return err
		}
		if err := s.lines.Delete(ctx, key); err != nil && !shared.IsCode(err, shared.CodeNotFound) {
			return err
		}
		return s.articles.Delete(ctx, key)
	})
}

func toDomainError(err error) *shared.DomainError {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	return shared.NewPersistenceError()
}
