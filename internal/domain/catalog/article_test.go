package catalog

import (
	"testing"
	"time"

	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestArticleValidate(t *testing.T) {
	article := &Article{Code: 1001, Description: "Linen shirt", TaxType: 1}
	assert.NoError(t, article.Validate())

	article.TaxType = 0
	assert.Error(t, article.Validate())
}

func TestArticleDepartmentKeyOptional(t *testing.T) {
	article := &Article{Code: 1001, Description: "Linen shirt", TaxType: 1}

	_, ok := article.DepartmentKey()
	assert.False(t, ok)

	dept := 3
	article.DepartmentNumber = &dept
	key, ok := article.DepartmentKey()
	assert.True(t, ok)
	assert.Equal(t, shared.Key{"numdpto": 3}, key)
}

func TestArticleLineAllowsEmptyVariant(t *testing.T) {
	line := &ArticleLine{ArticleCode: 1001}
	assert.NoError(t, line.Validate())
	assert.Equal(t, shared.Key{"codarticulo": 1001, "talla": "", "color": ""}, line.EntityKey())
}

func TestTariffValidate(t *testing.T) {
	tariff := &Tariff{
		ID:          1,
		Description: "Spring 2024",
		ValidFrom:   date(2024, time.March, 1),
		ValidUntil:  date(2024, time.May, 31),
	}
	assert.NoError(t, tariff.Validate())

	tariff.ValidFrom, tariff.ValidUntil = tariff.ValidUntil, tariff.ValidFrom
	err := tariff.Validate()
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	assert.Error(t, (&Tariff{ID: 2, Description: "No dates"}).Validate())
}

func TestTariffActiveOnIncludesBounds(t *testing.T) {
	tariff := &Tariff{
		ID:          1,
		Description: "Spring 2024",
		ValidFrom:   date(2024, time.March, 1),
		ValidUntil:  date(2024, time.May, 31),
	}

	assert.True(t, tariff.ActiveOn(date(2024, time.March, 1)))
	assert.True(t, tariff.ActiveOn(date(2024, time.May, 31)))
	assert.True(t, tariff.ActiveOn(date(2024, time.April, 15)))
	assert.False(t, tariff.ActiveOn(date(2024, time.February, 29)))
	assert.False(t, tariff.ActiveOn(date(2024, time.June, 1)))
}

func TestPriceValidate(t *testing.T) {
	price := &Price{
		TariffID:    1,
		ArticleCode: 1001,
		Size:        "M",
		Color:       "RED",
		GrossPrice:  decimal.NewFromFloat(25.00),
		Discount:    decimal.NewFromInt(10),
		NetPrice:    decimal.NewFromFloat(22.50),
	}
	assert.NoError(t, price.Validate())

	price.Discount = decimal.NewFromInt(120)
	assert.Error(t, price.Validate())

	price.Discount = decimal.NewFromInt(10)
	price.GrossPrice = decimal.NewFromInt(-1)
	assert.Error(t, price.Validate())
}

func TestPriceCompositeKey(t *testing.T) {
	price := &Price{TariffID: 1, ArticleCode: 1001, Size: "M", Color: "RED"}
	key := price.EntityKey()
	assert.Equal(t, shared.Key{"idtarifa": 1, "codarticulo": 1001, "talla": "M", "color": "RED"}, key)
	assert.Equal(t, shared.Key{"idtarifa": 1}, price.TariffKey())
	assert.Equal(t, shared.Key{"codarticulo": 1001}, price.ArticleKey())
}
