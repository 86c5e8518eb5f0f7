package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func newCatalog() *catalog.CatalogUseCase {
	store := memory.New()
	return catalog.NewCatalogUseCase(store.Products(), store.Categories(), store.Customers())
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	uc := newCatalog()

	p, err := uc.CreateProduct(ctx, dto.CreateProductRequest{
		SKU:      " TL30MR500001 ",
		Name:     "Marteau 500g",
		Price:    decimal.RequireFromString("22.90"),
		VATRate:  decimal.NewFromInt(21),
		MinStock: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "TL30MR500001", p.SKU)
	assert.Equal(t, "piece", p.Unit)
	assert.Equal(t, 0, p.StockQty)

	got, err := uc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marteau 500g", got.Name)

	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: "TL30MR500001", Name: "Autre", VATRate: decimal.NewFromInt(21)})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	list, err := uc.ListProducts(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestCreateProduct_Rejections(t *testing.T) {
	ctx := context.Background()
	uc := newCatalog()

	cases := map[string]dto.CreateProductRequest{
		"sin sku":         {Name: "X", VATRate: decimal.NewFromInt(21)},
		"iva no belga":    {SKU: "A", Name: "X", VATRate: decimal.NewFromInt(19)},
		"unidad":          {SKU: "A", Name: "X", VATRate: decimal.NewFromInt(6), Unit: "kg"},
		"min negativo":    {SKU: "A", Name: "X", VATRate: decimal.NewFromInt(6), MinStock: -1},
		"precio negativo": {SKU: "A", Name: "X", VATRate: decimal.NewFromInt(6), Price: decimal.NewFromInt(-1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.CreateProduct(ctx, in)
			assert.True(t, domain.IsValidation(err), "%v", err)
		})
	}

	_, err := uc.GetProduct(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestCreateCustomer_DerivesPeppolID(t *testing.T) {
	ctx := context.Background()
	uc := newCatalog()

	c, err := uc.CreateCustomer(ctx, dto.CreateCustomerRequest{
		Type:      "company",
		Name:      "Batiplus SPRL",
		VATNumber: "be 0123.456.749",
	})
	require.NoError(t, err)
	assert.Equal(t, "BE0123456749", c.VATNumber)
	assert.Equal(t, "0208:0123456749", c.PeppolID)
	assert.Equal(t, "BE", c.Country)

	found, err := uc.ListCustomers(ctx, "batiplus", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c.ID, found[0].ID)

	_, err = uc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "X", VATNumber: "BE0123456789"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "control módulo 97 incorrecto")

	_, err = uc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "X", Type: "partner"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.GetCustomer(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
