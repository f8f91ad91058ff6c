package customergrouprepo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

var groupCols = []string{"id", "code", "name", "description", "is_active", "created_at", "updated_at"}

func newRepo(t *testing.T) (*CustomerGroupRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCustomerGroupRepository(db, time.Second, logger.NewNop()), mock
}

func TestCreate_DuplicateCode(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(`INSERT INTO customer_groups`).WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), domain.CustomerGroup{ID: "g1", Code: "VAREJO", Name: "Varejo"})

	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Contains(t, err.Error(), "VAREJO")
}

func TestList_ActiveOnly(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM customer_groups WHERE is_active ORDER BY name`).
		WillReturnRows(sqlmock.NewRows(groupCols).
			AddRow("g1", "ATACADO", "Atacado", "", true, now, now).
			AddRow("g2", "VAREJO", "Varejo", "Balcão", true, now, now))

	groups, err := repo.List(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "VAREJO", groups[1].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`FROM customer_groups WHERE id = \$1`).WithArgs("g9").
		WillReturnRows(sqlmock.NewRows(groupCols))

	_, err := repo.FindByID(context.Background(), "g9")

	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdate_KeepsCodeOutOfSet(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`UPDATE customer_groups SET name = \$2, description = \$3, is_active = \$4, updated_at = \$5`).
		WithArgs("g1", "Atacado SP", "", false, now).
		WillReturnRows(sqlmock.NewRows(groupCols).AddRow("g1", "ATACADO", "Atacado SP", "", false, now, now))

	g, err := repo.Update(context.Background(), domain.CustomerGroup{ID: "g1", Name: "Atacado SP", UpdatedAt: now})

	require.NoError(t, err)
	assert.Equal(t, "ATACADO", g.Code)
	assert.False(t, g.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}
