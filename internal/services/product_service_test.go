package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nandakumarbm26/Products-RestAPI/internal/database/testutil"
	"github.com/nandakumarbm26/Products-RestAPI/internal/models"
)

func newProductService(t *testing.T) *ProductService {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewProductService(db, WithQueryTimeout(2*time.Second))
	require.NoError(t, err)
	return svc
}

func TestNewProductServiceRequiresDB(t *testing.T) {
	_, err := NewProductService(nil)
	require.Error(t, err)
}

func TestProductService_CreateAndGet(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Name:     "  Widget ",
		Price:    int64Ptr(20),
		Category: "tools",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "Widget", created.Name)
	require.True(t, created.Availability, "availability defaults to true")
	require.False(t, created.CreatedAt.IsZero())

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, int64(20), fetched.Price)
	require.Equal(t, "tools", fetched.Category)
}

func TestProductService_CreateKeepsExplicitUnavailable(t *testing.T) {
	svc := newProductService(t)

	created, err := svc.Create(context.Background(), CreateProductInput{
		Name:         "Gadget",
		Price:        int64Ptr(0),
		Category:     "toys",
		Availability: boolPtr(false),
	})
	require.NoError(t, err)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, fetched.Availability)
	require.Equal(t, int64(0), fetched.Price)
}

func TestProductService_CreateValidation(t *testing.T) {
	svc := newProductService(t)

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"missing name", CreateProductInput{Price: int64Ptr(1), Category: "c"}},
		{"blank name", CreateProductInput{Name: "   ", Price: int64Ptr(1), Category: "c"}},
		{"long name", CreateProductInput{Name: "abcdefghijklmnopqrstuvwxyz012345", Price: int64Ptr(1), Category: "c"}},
		{"missing price", CreateProductInput{Name: "n", Category: "c"}},
		{"negative price", CreateProductInput{Name: "n", Price: int64Ptr(-1), Category: "c"}},
		{"missing category", CreateProductInput{Name: "n", Price: int64Ptr(1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.ErrorIs(t, err, ErrInvalidProduct)

			var validationErr *ProductValidationError
			require.True(t, errors.As(err, &validationErr))
			require.NotEmpty(t, validationErr.Messages)
		})
	}
}

func TestProductService_GetMissing(t *testing.T) {
	svc := newProductService(t)

	_, err := svc.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_ListPaginatesNewestFirst(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 5; i++ {
		p, err := svc.Create(ctx, CreateProductInput{Name: "p", Price: int64Ptr(int64(i)), Category: "c"})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	page, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(5), page.Count)
	require.Equal(t, 3, page.TotalPage)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 2, page.PerPage)
	require.Len(t, page.Rows, 2)
	require.Equal(t, ids[4], page.Rows[0].ID)
	require.Equal(t, ids[3], page.Rows[1].ID)

	last, err := svc.List(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Rows, 1)
	require.Equal(t, ids[0], last.Rows[0].ID)

	beyond, err := svc.List(ctx, 9, 2)
	require.NoError(t, err)
	require.NotNil(t, beyond.Rows)
	require.Empty(t, beyond.Rows)
}

func TestProductService_ListRejectsBadPagination(t *testing.T) {
	svc := newProductService(t)

	_, err := svc.List(context.Background(), 0, 10)
	require.ErrorIs(t, err, ErrInvalidQuery)
	_, err = svc.List(context.Background(), 1, 0)
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestProductService_ListRejectsOverflowingPage(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, math.MaxInt, 10)
	require.ErrorIs(t, err, ErrInvalidQuery)
	_, err = svc.List(ctx, MaxListOffset/10+2, 10)
	require.ErrorIs(t, err, ErrInvalidQuery)

	page, err := svc.List(ctx, MaxListOffset/10+1, 10)
	require.NoError(t, err)
	require.Empty(t, page.Rows)
	require.Equal(t, MaxListOffset/10+1, page.Page)
}

func TestProductService_Filter(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	for _, input := range []CreateProductInput{
		{Name: "cheap tool", Price: int64Ptr(5), Category: "tools"},
		{Name: "mid tool", Price: int64Ptr(20), Category: "tools"},
		{Name: "pricey tool", Price: int64Ptr(100), Category: "tools"},
		{Name: "toy", Price: int64Ptr(20), Category: "toys"},
	} {
		_, err := svc.Create(ctx, input)
		require.NoError(t, err)
	}

	all, err := svc.Filter(ctx, ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "toy", all[0].Name, "newest first")

	tools, err := svc.Filter(ctx, ProductFilter{Category: "tools"})
	require.NoError(t, err)
	require.Len(t, tools, 3)

	bounded, err := svc.Filter(ctx, ProductFilter{Category: "tools", PriceMin: int64Ptr(5), PriceMax: int64Ptr(20)})
	require.NoError(t, err)
	require.Len(t, bounded, 2)
	require.Equal(t, "mid tool", bounded[0].Name)
	require.Equal(t, "cheap tool", bounded[1].Name)

	none, err := svc.Filter(ctx, ProductFilter{Category: "garden"})
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestProductService_UpdatePartial(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{Name: "Widget", Price: int64Ptr(20), Category: "tools"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateProductInput{Price: int64Ptr(25)})
	require.NoError(t, err)
	require.Equal(t, int64(25), updated.Price)
	require.Equal(t, "Widget", updated.Name)

	updated, err = svc.Update(ctx, created.ID, UpdateProductInput{Availability: boolPtr(false), Category: stringPtr("gear")})
	require.NoError(t, err)
	require.False(t, updated.Availability)
	require.Equal(t, "gear", updated.Category)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(25), fetched.Price)
	require.False(t, fetched.Availability)
	require.Equal(t, "gear", fetched.Category)
}

func TestProductService_UpdateErrors(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, 404, UpdateProductInput{Price: int64Ptr(1)})
	require.ErrorIs(t, err, ErrProductNotFound)

	created, err := svc.Create(ctx, CreateProductInput{Name: "Widget", Price: int64Ptr(20), Category: "tools"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, UpdateProductInput{Name: stringPtr("")})
	require.ErrorIs(t, err, ErrInvalidProduct)
	_, err = svc.Update(ctx, created.ID, UpdateProductInput{Price: int64Ptr(-5)})
	require.ErrorIs(t, err, ErrInvalidProduct)
}

func TestProductService_DeleteIsSoft(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{Name: "Widget", Price: int64Ptr(20), Category: "tools"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrProductNotFound)

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Update(ctx, created.ID, UpdateProductInput{Price: int64Ptr(1)})
	require.ErrorIs(t, err, ErrProductNotFound)

	page, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Zero(t, page.Count)

	var tombstoned models.Product
	require.NoError(t, svc.db.Unscoped().First(&tombstoned, created.ID).Error)
	require.True(t, tombstoned.DeletedAt.Valid)
}

func TestProductService_PurgeDeleted(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	kept, err := svc.Create(ctx, CreateProductInput{Name: "kept", Price: int64Ptr(1), Category: "c"})
	require.NoError(t, err)
	gone, err := svc.Create(ctx, CreateProductInput{Name: "gone", Price: int64Ptr(1), Category: "c"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, gone.ID))

	removed, err := svc.PurgeDeleted(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, removed, "recent tombstones are retained")

	removed, err = svc.PurgeDeleted(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var total int64
	require.NoError(t, svc.db.Unscoped().Model(&models.Product{}).Count(&total).Error)
	require.Equal(t, int64(1), total)

	_, err = svc.Get(ctx, kept.ID)
	require.NoError(t, err)
}

func TestProductService_Ping(t *testing.T) {
	svc := newProductService(t)
	require.NoError(t, svc.Ping(context.Background()))
}
