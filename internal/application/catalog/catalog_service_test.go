package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/erpsync/backend/internal/domain/billing"
	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	departments  *memStore[catalog.Department, *catalog.Department]
	sections     *memStore[catalog.Section, *catalog.Section]
	families     *memStore[catalog.Family, *catalog.Family]
	taxes        *memStore[catalog.Tax, *catalog.Tax]
	tariffs      *memStore[catalog.Tariff, *catalog.Tariff]
	articles     *memStore[catalog.Article, *catalog.Article]
	lines        *memStore[catalog.ArticleLine, *catalog.ArticleLine]
	prices       *memStore[catalog.Price, *catalog.Price]
	invoiceLines *memStore[billing.InvoiceDetail, *billing.InvoiceDetail]

	hierarchy      *HierarchyService
	taxService     *TaxService
	tariffService  *TariffService
	articleService *ArticleService
}

func newFixture() *fixture {
	f := &fixture{
		departments:  newMemStore[catalog.Department](),
		sections:     newMemStore[catalog.Section](),
		families:     newMemStore[catalog.Family](),
		taxes:        newMemStore[catalog.Tax](),
		tariffs:      newMemStore[catalog.Tariff](),
		articles:     newMemStore[catalog.Article](),
		lines:        newMemStore[catalog.ArticleLine](),
		prices:       newMemStore[catalog.Price](),
		invoiceLines: newMemStore[billing.InvoiceDetail](),
	}
	tx := passTx{}
	clock := fixedClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	logger := zap.NewNop()

	f.hierarchy = NewHierarchyService(f.departments, f.sections, f.families, f.articles, tx, clock, logger)
	f.taxService = NewTaxService(f.taxes, f.articles, tx, clock, logger)
	f.tariffService = NewTariffService(f.tariffs, f.prices, tx, clock, logger)
	f.articleService = NewArticleService(ArticleServiceDeps{
		Articles:     f.articles,
		Lines:        f.lines,
		Prices:       f.prices,
		Taxes:        f.taxes,
		Departments:  f.departments,
		Sections:     f.sections,
		Families:     f.families,
		Tariffs:      f.tariffs,
		InvoiceLines: f.invoiceLines,
	}, tx, clock, logger)
	return f
}

func TestSyncDepartmentsThenGet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	result, err := f.hierarchy.SyncDepartments(ctx, []DepartmentInput{{Number: 1, Description: "Textiles"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	view, err := f.hierarchy.GetDepartment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Textiles", view.Description)
	assert.Equal(t, 1, view.Number)
}

func TestSyncSectionsRequiresDepartment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.hierarchy.SyncDepartments(ctx, []DepartmentInput{{Number: 1, Description: "Textiles"}})
	require.NoError(t, err)

	_, err = f.hierarchy.SyncSections(ctx, []SectionInput{
		{DepartmentNumber: 9, Number: 1, Description: "Orphan"},
	})
	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Contains(t, batchErr.Items[0].Err.Message, "referenced Department (numdpto=9) does not exist")

	result, err := f.hierarchy.SyncSections(ctx, []SectionInput{
		{DepartmentNumber: 1, Number: 1, Description: "Shirts"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

func TestSyncFamiliesRequiresSection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.departments.put(&catalog.Department{Number: 1, Description: "Textiles"})
	f.sections.put(&catalog.Section{DepartmentNumber: 1, Number: 2, Description: "Shirts"})

	_, err := f.hierarchy.SyncFamilies(ctx, []FamilyInput{
		{DepartmentNumber: 1, SectionNumber: 3, Number: 1, Description: "Orphan"},
	})
	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, shared.CodeMissingParent, batchErr.Items[0].Err.Code)

	result, err := f.hierarchy.SyncFamilies(ctx, []FamilyInput{
		{DepartmentNumber: 1, SectionNumber: 2, Number: 1, Description: "Short sleeve"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

func TestDeleteDepartmentGatedOnSections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.departments.put(&catalog.Department{Number: 1, Description: "Textiles"})
	f.sections.put(&catalog.Section{DepartmentNumber: 1, Number: 1, Description: "Shirts"})
	f.sections.countFn = func(where shared.Key) int64 { return 1 }
	f.articles.countFn = func(where shared.Key) int64 { return 0 }

	err := f.hierarchy.DeleteDepartment(ctx, 1)
	assert.True(t, shared.IsCode(err, shared.CodeConsistency))

	f.sections.countFn = func(where shared.Key) int64 { return 0 }
	require.NoError(t, f.hierarchy.DeleteDepartment(ctx, 1))

	_, err = f.hierarchy.GetDepartment(ctx, 1)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}

func TestDeleteTaxGatedOnArticles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})
	f.articles.countFn = func(where shared.Key) int64 { return 3 }

	err := f.taxService.Delete(ctx, 1)
	assert.True(t, shared.IsCode(err, shared.CodeConsistency))
	assert.Contains(t, err.Error(), "3 articles")

	f.articles.countFn = func(where shared.Key) int64 { return 0 }
	require.NoError(t, f.taxService.Delete(ctx, 1))
}

func TestTariffSyncAcceptsOverlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.tariffService.Sync(ctx, []TariffInput{
		{ID: 1, Description: "Spring", ValidFrom: day(2024, 3, 1), ValidUntil: day(2024, 5, 31)},
	})
	require.NoError(t, err)

	// overlapping range is accepted on write
	result, err := f.tariffService.Sync(ctx, []TariffInput{
		{ID: 2, Description: "Promo", ValidFrom: day(2024, 5, 1), ValidUntil: day(2024, 6, 30)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

func TestTariffCheckOverlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.tariffs.put(&catalog.Tariff{ID: 1, Description: "Spring", ValidFrom: day(2024, 3, 1), ValidUntil: day(2024, 5, 31)})

	check, err := f.tariffService.CheckOverlap(ctx, OverlapCheckInput{
		TariffID: 2, ValidFrom: day(2024, 5, 31), ValidUntil: day(2024, 7, 31),
	})
	require.NoError(t, err)
	assert.True(t, check.Overlaps)
	require.Len(t, check.Conflicts, 1)
	assert.Contains(t, check.Conflicts[0], `tariff 1 "Spring"`)

	// the tariff never conflicts with itself
	check, err = f.tariffService.CheckOverlap(ctx, OverlapCheckInput{
		TariffID: 1, ValidFrom: day(2024, 3, 1), ValidUntil: day(2024, 5, 31),
	})
	require.NoError(t, err)
	assert.False(t, check.Overlaps)

	check, err = f.tariffService.CheckOverlap(ctx, OverlapCheckInput{
		TariffID: 2, ValidFrom: day(2024, 6, 1), ValidUntil: day(2024, 8, 31),
	})
	require.NoError(t, err)
	assert.False(t, check.Overlaps)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestArticleAggregateDefaultLine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})

	result, err := f.articleService.Sync(ctx, ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
	})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.True(t, result.DefaultLine)
	assert.Equal(t, 1, result.LineCount)

	_, err = f.lines.Find(ctx, shared.Key{"codarticulo": 1001, "talla": "", "color": ""})
	assert.NoError(t, err)
}

func TestArticleAggregateMissingTax(t *testing.T) {
	f := newFixture()

	_, err := f.articleService.Sync(context.Background(), ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 5},
	})

	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Contains(t, batchErr.Items[0].Err.Message, "referenced Tax (tipoiva=5) does not exist")
}

func TestArticleAggregatePriceNeedsMatchingVariant(t *testing.T) {
	f := newFixture()

	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})
	f.tariffs.put(&catalog.Tariff{ID: 1, Description: "Base", ValidFrom: day(2024, 1, 1), ValidUntil: day(2024, 12, 31)})

	// with synthesis off, a price for an undeclared variant is an error
	_, err := f.articleService.Sync(context.Background(), ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
		Lines:   []ArticleLineInput{{Size: "M", Color: "RED"}},
		Prices: []PriceInput{
			{TariffID: 1, Size: "XL", Color: "BLUE", GrossPrice: decimal.NewFromInt(20), NetPrice: decimal.NewFromInt(20)},
		},
		Options: ArticleSyncOptions{AutoCreateLines: boolPtr(false)},
	})

	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, shared.CodeConsistency, batchErr.Items[0].Err.Code)
	assert.Contains(t, batchErr.Items[0].Err.Message, "no matching article line")
}

func TestArticleAggregateDuplicateVariant(t *testing.T) {
	f := newFixture()
	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})

	_, err := f.articleService.Sync(context.Background(), ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
		Lines: []ArticleLineInput{
			{Size: "M", Color: "RED"},
			{Size: "M", Color: "RED"},
		},
	})

	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, shared.CodeDuplicateKey, batchErr.Items[0].Err.Code)
}

func TestArticleAggregateStats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})
	f.tariffs.put(&catalog.Tariff{ID: 1, Description: "Base", ValidFrom: day(2024, 1, 1), ValidUntil: day(2024, 12, 31)})
	f.tariffs.put(&catalog.Tariff{ID: 2, Description: "Outlet", ValidFrom: day(2024, 1, 1), ValidUntil: day(2024, 12, 31)})

	result, err := f.articleService.Sync(ctx, ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
		Lines: []ArticleLineInput{
			{Size: "M", Color: "RED"},
			{Size: "L", Color: "RED"},
		},
		Prices: []PriceInput{
			{TariffID: 1, Size: "M", Color: "RED", GrossPrice: decimal.NewFromInt(30), NetPrice: decimal.NewFromInt(30)},
			{TariffID: 1, Size: "L", Color: "RED", GrossPrice: decimal.NewFromInt(30), NetPrice: decimal.NewFromInt(30)},
			{TariffID: 2, Size: "M", Color: "RED", GrossPrice: decimal.NewFromInt(30), Discount: decimal.NewFromInt(50), NetPrice: decimal.NewFromInt(15)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.LineCount)
	assert.Equal(t, 3, result.PriceCount)
	assert.Equal(t, 2, result.TariffCount)
	assert.True(t, result.MinNetPrice.Equal(decimal.NewFromInt(15)))
	assert.True(t, result.MaxNetPrice.Equal(decimal.NewFromInt(30)))
	assert.True(t, result.AvgNetPrice.Equal(decimal.NewFromInt(25)))
	assert.False(t, result.DefaultLine)
}

func TestArticleAggregateResubmitUpdates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})

	input := ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
		Lines:   []ArticleLineInput{{Size: "M", Color: "RED"}},
	}
	result, err := f.articleService.Sync(ctx, input)
	require.NoError(t, err)
	assert.True(t, result.Created)

	input.Article.Description = "Linen shirt v2"
	result, err = f.articleService.Sync(ctx, input)
	require.NoError(t, err)
	assert.False(t, result.Created)

	row, err := f.articles.Find(ctx, shared.Key{"codarticulo": 1001})
	require.NoError(t, err)
	assert.Equal(t, "Linen shirt v2", row.Description)
}

func boolPtr(b bool) *bool { return &b }

func TestArticleAggregateAutoCreateLinesOff(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})

	result, err := f.articleService.Sync(ctx, ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
		Options: ArticleSyncOptions{AutoCreateLines: boolPtr(false)},
	})
	require.NoError(t, err)
	assert.False(t, result.DefaultLine)
	assert.Equal(t, 0, result.LineCount)

	_, err = f.lines.Find(ctx, shared.Key{"codarticulo": 1001, "talla": "", "color": ""})
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}

func TestArticleAggregateSynthesizesPricedVariants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})
	f.tariffs.put(&catalog.Tariff{ID: 1, Description: "Base", ValidFrom: day(2024, 1, 1), ValidUntil: day(2024, 12, 31)})

	result, err := f.articleService.Sync(ctx, ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
		Lines:   []ArticleLineInput{{Size: "M", Color: "RED"}},
		Prices: []PriceInput{
			{TariffID: 1, Size: "L", Color: "RED", GrossPrice: decimal.NewFromInt(20), NetPrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.LineCount)

	_, err = f.lines.Find(ctx, shared.Key{"codarticulo": 1001, "talla": "L", "color": "RED"})
	assert.NoError(t, err)
}

func TestArticleAggregateReferentialChecksAlwaysRun(t *testing.T) {
	f := newFixture()

	// the statistics switch never disables the tax check
	_, err := f.articleService.Sync(context.Background(), ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 5},
		Options: ArticleSyncOptions{ValidateIntegrity: boolPtr(false)},
	})

	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, shared.CodeMissingParent, batchErr.Items[0].Err.Code)
}

func TestArticleAggregateStatsSkippedWhenDisabled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})
	f.tariffs.put(&catalog.Tariff{ID: 1, Description: "Base", ValidFrom: day(2024, 1, 1), ValidUntil: day(2024, 12, 31)})

	result, err := f.articleService.Sync(ctx, ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
		Lines:   []ArticleLineInput{{Size: "M", Color: "RED"}},
		Prices: []PriceInput{
			{TariffID: 1, Size: "M", Color: "RED", GrossPrice: decimal.NewFromInt(30), NetPrice: decimal.NewFromInt(30)},
		},
		Options: ArticleSyncOptions{ValidateIntegrity: boolPtr(false)},
	})
	require.NoError(t, err)
	assert.True(t, result.Created)

	// the aggregate landed but the informational statistics were skipped
	assert.Equal(t, 0, result.LineCount)
	assert.Equal(t, 0, result.PriceCount)
	assert.Equal(t, 0, result.TariffCount)
	assert.Nil(t, result.MinNetPrice)

	_, err = f.prices.Find(ctx, shared.Key{"idtarifa": 1, "codarticulo": 1001, "talla": "M", "color": "RED"})
	assert.NoError(t, err)
}

func TestArticleAggregateResubmitDropsRemovedChildren(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.taxes.put(&catalog.Tax{Type: 1, Description: "General", Rate: decimal.NewFromInt(21)})
	f.tariffs.put(&catalog.Tariff{ID: 1, Description: "Base", ValidFrom: day(2024, 1, 1), ValidUntil: day(2024, 12, 31)})

	_, err := f.articleService.Sync(ctx, ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
		Lines: []ArticleLineInput{
			{Size: "M", Color: "RED"},
			{Size: "L", Color: "RED"},
		},
		Prices: []PriceInput{
			{TariffID: 1, Size: "M", Color: "RED", GrossPrice: decimal.NewFromInt(30), NetPrice: decimal.NewFromInt(30)},
			{TariffID: 1, Size: "L", Color: "RED", GrossPrice: decimal.NewFromInt(30), NetPrice: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)
	assert.Len(t, f.lines.rows, 2)
	assert.Len(t, f.prices.rows, 2)

	// the resubmitted aggregate no longer carries the L variant
	_, err = f.articleService.Sync(ctx, ArticleAggregateInput{
		Article: ArticleInput{Code: 1001, Description: "Linen shirt", TaxType: 1},
		Lines:   []ArticleLineInput{{Size: "M", Color: "RED"}},
		Prices: []PriceInput{
			{TariffID: 1, Size: "M", Color: "RED", GrossPrice: decimal.NewFromInt(30), NetPrice: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)

	_, err = f.lines.Find(ctx, shared.Key{"codarticulo": 1001, "talla": "L", "color": "RED"})
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
	_, err = f.prices.Find(ctx, shared.Key{"idtarifa": 1, "codarticulo": 1001, "talla": "L", "color": "RED"})
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
	_, err = f.lines.Find(ctx, shared.Key{"codarticulo": 1001, "talla": "M", "color": "RED"})
	assert.NoError(t, err)
}
