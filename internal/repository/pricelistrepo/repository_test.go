package pricelistrepo

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
)

func newRepo(t *testing.T) (*PriceListRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPriceListRepository(db, time.Second), mock
}

var resolutionColumns = []string{
	"l.id", "l.name", "l.code", "l.description", "l.customer_group_id", "l.start_date", "l.end_date",
	"l.priority", "l.discount_type", "l.status", "l.applicable_on", "l.is_default", "l.created_at", "l.updated_at",
	"i.id", "i.price_list_id", "i.product_id", "i.price", "i.min_quantity", "i.max_quantity",
	"i.discount_type", "i.discount_value", "i.discount_rate", "i.special_conditions", "i.is_active",
	"i.created_at", "i.updated_at",
}

func TestFindForResolution_GroupsItemsByList(t *testing.T) {
	repo, mock := newRepo(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(resolutionColumns).
		AddRow("l1", "Varejo", "VAR", "", "g1", nil, end, 10, "percentage", "active", "selected_products", false, created, created,
			"i1", "l1", "p1", "100.00", "1", "9", nil, "5", "0", "", true, created, created).
		AddRow("l1", "Varejo", "VAR", "", "g1", nil, end, 10, "percentage", "active", "selected_products", false, created, created,
			"i2", "l1", "p1", "100.00", "10", nil, "fixed_amount", "10", "0", "", true, created, created).
		AddRow("l2", "Geral", "GER", "", "g2", nil, nil, 0, "fixed_amount", "active", "all", false, created, created,
			"i3", "l2", "p1", "90.00", "1", nil, nil, "0", "0", "", true, created, created)

	mock.ExpectQuery(`FROM price_lists l\s+JOIN price_list_items i`).
		WithArgs(domain.PriceListActive, "g1", domain.ApplicableOnAll, "p1").
		WillReturnRows(rows)

	lists, err := repo.FindForResolution(context.Background(), "g1", "p1")
	require.NoError(t, err)
	require.Len(t, lists, 2)

	assert.Equal(t, "l1", lists[0].ID)
	require.Len(t, lists[0].Items, 2)
	assert.Nil(t, lists[0].StartDate)
	require.NotNil(t, lists[0].EndDate)
	assert.True(t, end.Equal(*lists[0].EndDate))
	require.NotNil(t, lists[0].Items[0].MaxQuantity)
	assert.True(t, decimal.NewFromInt(9).Equal(*lists[0].Items[0].MaxQuantity))
	assert.Nil(t, lists[0].Items[1].MaxQuantity)
	assert.Equal(t, domain.DiscountType(""), lists[0].Items[0].DiscountType)
	assert.Equal(t, domain.DiscountFixedAmount, lists[0].Items[1].DiscountType)

	assert.Equal(t, domain.ApplicableOnAll, lists[1].ApplicableOn)
	assert.Len(t, lists[1].Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DefaultClearsOtherDefaultsInTransaction(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()
	list := domain.PriceList{
		ID: "l1", Name: "Padrão", Code: "PAD", CustomerGroupID: "g1",
		DiscountType: domain.DiscountPercentage, Status: domain.PriceListActive,
		ApplicableOn: domain.ApplicableOnAll, IsDefault: true, CreatedAt: now, UpdatedAt: now,
		Items: []domain.PriceListItem{{ID: "i1", PriceListID: "l1", ProductID: "p1", Price: decimal.NewFromInt(10), MinQuantity: decimal.NewFromInt(1), IsActive: true}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE price_lists SET is_default = FALSE`).
		WithArgs("g1", "l1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO price_lists`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO price_list_items`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.Create(context.Background(), list)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateCodeIsConflict(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO price_lists`).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), domain.PriceList{ID: "l1", CustomerGroupID: "g1"})
	require.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`FROM price_lists WHERE id = \$1`).WithArgs("x").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), "x")
	assert.True(t, apperror.IsNotFound(err))
}

func TestExpireOverdue_SkipsDefaultLists(t *testing.T) {
	repo, mock := newRepo(t)
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE price_lists SET status = \$1, updated_at = \$3\s+WHERE status = \$2 AND NOT is_default`).
		WithArgs(domain.PriceListExpired, domain.PriceListActive, asOf).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ExpireOverdue(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestUpdateItem_MissingRowIsNotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(`UPDATE price_list_items`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateItem(context.Background(), domain.PriceListItem{ID: "i1", PriceListID: "l1"})
	assert.True(t, apperror.IsNotFound(err))
}

func itemArgs(discountType interface{}) []driver.Value {
	args := make([]driver.Value, 13)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	args[6] = discountType
	return args
}

func TestAddItem_InheritedDiscountTypeIsWrittenAsNull(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()
	mock.ExpectExec(`INSERT INTO price_list_items`).
		WithArgs(itemArgs(nil)...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	item, err := repo.AddItem(context.Background(), domain.PriceListItem{
		ID: "i1", PriceListID: "l1", ProductID: "p1", Price: decimal.NewFromInt(50),
		MinQuantity: decimal.NewFromInt(1), DiscountValue: decimal.NewFromInt(10),
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DiscountType(""), item.DiscountType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItem_ExplicitDiscountTypeIsWritten(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(`INSERT INTO price_list_items`).
		WithArgs(itemArgs("fixed_amount")...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := repo.AddItem(context.Background(), domain.PriceListItem{
		ID: "i1", PriceListID: "l1", ProductID: "p1", Price: decimal.NewFromInt(50),
		MinQuantity: decimal.NewFromInt(1), DiscountType: domain.DiscountFixedAmount, IsActive: true,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItem_ClearedDiscountTypeIsWrittenAsNull(t *testing.T) {
	repo, mock := newRepo(t)
	args := make([]driver.Value, 11)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	args[5] = nil
	mock.ExpectExec(`UPDATE price_list_items SET`).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := repo.UpdateItem(context.Background(), domain.PriceListItem{ID: "i1", PriceListID: "l1"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
