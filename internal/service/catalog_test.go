package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/apperr"
	"stockmate/internal/models"
)

type catalogFixture struct {
	products   *memProducts
	categories *memRefs
	vendors    *memRefs
	catalog    *Catalog
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	f := &catalogFixture{
		products:   newMemProducts(),
		categories: newMemRefs(),
		vendors:    newMemRefs(),
	}
	f.catalog = NewCatalog(f.products, f.categories, f.vendors, testLogger())
	return f
}

func (f *catalogFixture) category() primitive.ObjectID {
	id := primitive.NewObjectID()
	f.categories.ids[id] = true
	return id
}

func (f *catalogFixture) vendor() primitive.ObjectID {
	id := primitive.NewObjectID()
	f.vendors.ids[id] = true
	return id
}

func TestCreateProduct(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	vendor := f.vendor()
	admin := adminPrincipal()

	p, err := f.catalog.Create(context.Background(), CreateProductInput{
		SKU:        "CB-001",
		Name:       "Coffee Beans",
		CategoryID: category,
		VendorIDs:  []primitive.ObjectID{vendor},
		Quantity:   50,
		PriceCents: 1250,
	}, admin)
	require.NoError(t, err)

	assert.False(t, p.ID.IsZero())
	assert.Equal(t, int64(models.DefaultLowStockThreshold), p.LowStockThreshold)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, models.AuditCreate, p.CreatedBy.Action)
	assert.Equal(t, admin.ID, p.CreatedBy.User)
}

func TestCreateProductValidation(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	admin := adminPrincipal()

	tests := []struct {
		name  string
		input CreateProductInput
	}{
		{"missing name", CreateProductInput{CategoryID: category, PriceCents: 100}},
		{"missing category", CreateProductInput{Name: "Tea", PriceCents: 100}},
		{"negative quantity", CreateProductInput{Name: "Tea", CategoryID: category, Quantity: -1, PriceCents: 100}},
		{"zero price", CreateProductInput{Name: "Tea", CategoryID: category}},
		{"negative threshold", CreateProductInput{Name: "Tea", CategoryID: category, PriceCents: 100, LowStockThreshold: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.catalog.Create(context.Background(), tt.input, admin)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.Validation))
		})
	}
}

func TestCreateProductUnknownReferences(t *testing.T) {
	f := newCatalogFixture(t)
	admin := adminPrincipal()

	_, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name:       "Tea",
		CategoryID: primitive.NewObjectID(),
		PriceCents: 100,
	}, admin)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	_, err = f.catalog.Create(context.Background(), CreateProductInput{
		Name:       "Tea",
		CategoryID: f.category(),
		VendorIDs:  []primitive.ObjectID{primitive.NewObjectID()},
		PriceCents: 100,
	}, admin)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestCreateProductOutOfScope(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	other := f.category()

	_, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name:       "Tea",
		CategoryID: category,
		PriceCents: 100,
	}, employeePrincipal(other))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Authorization))
}

func TestGetProductScope(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	p, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name:       "Tea",
		CategoryID: category,
		PriceCents: 100,
	}, adminPrincipal())
	require.NoError(t, err)

	got, err := f.catalog.Get(context.Background(), p.ID, employeePrincipal(category), false)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.catalog.Get(context.Background(), p.ID, employeePrincipal(f.category()), false)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Authorization))
}

func TestListScoping(t *testing.T) {
	f := newCatalogFixture(t)
	drinks := f.category()
	snacks := f.category()
	admin := adminPrincipal()

	for _, in := range []CreateProductInput{
		{Name: "Tea", CategoryID: drinks, PriceCents: 100},
		{Name: "Coffee", CategoryID: drinks, PriceCents: 200},
		{Name: "Crisps", CategoryID: snacks, PriceCents: 150},
	} {
		_, err := f.catalog.Create(context.Background(), in, admin)
		require.NoError(t, err)
	}

	all, total, err := f.catalog.List(context.Background(), admin, 1, 20)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int64(3), total)

	scoped, total, err := f.catalog.List(context.Background(), employeePrincipal(drinks), 1, 20)
	require.NoError(t, err)
	assert.Len(t, scoped, 2)
	assert.Equal(t, int64(2), total)

	none, total, err := f.catalog.List(context.Background(), employeePrincipal(), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Zero(t, total)
}

func TestListPagination(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	admin := adminPrincipal()

	for i := 0; i < 5; i++ {
		_, err := f.catalog.Create(context.Background(), CreateProductInput{
			Name:       fmt.Sprintf("Product %d", i),
			CategoryID: category,
			Quantity:   10,
			PriceCents: 100,
		}, admin)
		require.NoError(t, err)
	}

	first, total, err := f.catalog.List(context.Background(), admin, 1, 2)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, int64(5), total)

	second, _, err := f.catalog.List(context.Background(), admin, 2, 2)
	require.NoError(t, err)
	assert.Len(t, second, 2)
	for _, p := range second {
		assert.NotContains(t, []string{first[0].Name, first[1].Name}, p.Name)
	}

	last, _, err := f.catalog.List(context.Background(), admin, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last, 1)

	// Past the final page comes back empty, with the total intact.
	beyond, total, err := f.catalog.List(context.Background(), admin, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond)
	assert.Equal(t, int64(5), total)
}

func TestListLowStockIsReadOnly(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	admin := adminPrincipal()

	_, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name: "Tea", CategoryID: category, Quantity: 3, PriceCents: 100, LowStockThreshold: 5,
	}, admin)
	require.NoError(t, err)
	_, err = f.catalog.Create(context.Background(), CreateProductInput{
		Name: "Coffee", CategoryID: category, Quantity: 80, PriceCents: 200, LowStockThreshold: 5,
	}, admin)
	require.NoError(t, err)

	low, err := f.catalog.ListLowStock(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Tea", low[0].Name)
}

func TestListExpiringSoon(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	admin := adminPrincipal()
	now := time.Now()

	soon := now.Add(10 * 24 * time.Hour)
	far := now.Add(90 * 24 * time.Hour)
	for name, expiry := range map[string]*time.Time{
		"Yogurt": &soon,
		"Honey":  &far,
		"Salt":   nil,
	} {
		_, err := f.catalog.Create(context.Background(), CreateProductInput{
			Name: name, CategoryID: category, Quantity: 10, PriceCents: 100, ExpiryDate: expiry,
		}, admin)
		require.NoError(t, err)
	}

	expiring, err := f.catalog.ListExpiringSoon(context.Background(), admin, now)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "Yogurt", expiring[0].Name)
}

func TestUpdateProduct(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	admin := adminPrincipal()
	p, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name: "Tea", CategoryID: category, Quantity: 10, PriceCents: 100,
	}, admin)
	require.NoError(t, err)

	name := "Green Tea"
	price := int64(250)
	updated, err := f.catalog.Update(context.Background(), p.ID, models.ProductPatch{
		Name:       &name,
		PriceCents: &price,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Green Tea", updated.Name)
	assert.Equal(t, int64(250), updated.PriceCents)
	require.Len(t, updated.EditedBy, 1)
	assert.Equal(t, models.AuditEdit, updated.EditedBy[0].Action)
}

func TestUpdateQuantityIsCorrection(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	admin := adminPrincipal()
	p, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name: "Tea", CategoryID: category, Quantity: 10, PriceCents: 100,
	}, admin)
	require.NoError(t, err)

	qty := int64(42)
	updated, err := f.catalog.Update(context.Background(), p.ID, models.ProductPatch{Quantity: &qty}, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(42), updated.Quantity)
	require.Len(t, updated.EditedBy, 1)
	assert.Equal(t, models.AuditCorrection, updated.EditedBy[0].Action)
}

func TestUpdateCategoryMoveChecksBothEnds(t *testing.T) {
	f := newCatalogFixture(t)
	source := f.category()
	destination := f.category()
	p, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name: "Tea", CategoryID: source, Quantity: 10, PriceCents: 100,
	}, adminPrincipal())
	require.NoError(t, err)

	// Employee scoped to the source only cannot move the product out.
	_, err = f.catalog.Update(context.Background(), p.ID, models.ProductPatch{
		CategoryID: &destination,
	}, employeePrincipal(source))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Authorization))

	// Scoped to both ends the move goes through.
	updated, err := f.catalog.Update(context.Background(), p.ID, models.ProductPatch{
		CategoryID: &destination,
	}, employeePrincipal(source, destination))
	require.NoError(t, err)
	assert.Equal(t, destination, updated.CategoryID)
}

func TestUpdateClearsExpiryDate(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	admin := adminPrincipal()
	expiry := time.Now().Add(48 * time.Hour)
	p, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name: "Yogurt", CategoryID: category, Quantity: 10, PriceCents: 100, ExpiryDate: &expiry,
	}, admin)
	require.NoError(t, err)

	updated, err := f.catalog.Update(context.Background(), p.ID, models.ProductPatch{ClearExpiryDate: true}, admin)
	require.NoError(t, err)
	assert.Nil(t, updated.ExpiryDate)
}

func TestUpdateEmptyPatch(t *testing.T) {
	f := newCatalogFixture(t)
	_, err := f.catalog.Update(context.Background(), primitive.NewObjectID(), models.ProductPatch{}, adminPrincipal())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestSoftDelete(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	admin := adminPrincipal()
	p, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name: "Tea", CategoryID: category, Quantity: 10, PriceCents: 100,
	}, admin)
	require.NoError(t, err)

	require.NoError(t, f.catalog.SoftDelete(context.Background(), p.ID, admin))

	// Gone from normal reads and listings.
	_, err = f.catalog.Get(context.Background(), p.ID, admin, false)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	all, total, err := f.catalog.List(context.Background(), admin, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Zero(t, total)

	// Still reachable for an admin audit read, with the deletion recorded.
	got, err := f.catalog.Get(context.Background(), p.ID, admin, true)
	require.NoError(t, err)
	require.NotNil(t, got.DeletedBy)
	assert.Equal(t, models.AuditDelete, got.DeletedBy.Action)

	// The audit flag does nothing for employees.
	_, err = f.catalog.Get(context.Background(), p.ID, employeePrincipal(category), true)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestSoftDeleteOutOfScope(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.category()
	p, err := f.catalog.Create(context.Background(), CreateProductInput{
		Name: "Tea", CategoryID: category, Quantity: 10, PriceCents: 100,
	}, adminPrincipal())
	require.NoError(t, err)

	err = f.catalog.SoftDelete(context.Background(), p.ID, employeePrincipal(f.category()))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Authorization))
}
