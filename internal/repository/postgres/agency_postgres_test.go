package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"agencydir/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var agencyCols = []string{"id", "name", "description", "location", "category", "team_size", "rate", "rating", "image_ref", "created_at", "updated_at"}

func agencyRow(a model.Agency) *sqlmock.Rows {
	return sqlmock.NewRows(agencyCols).
		AddRow(a.ID, a.Name, a.Description, a.Location, a.Category, a.TeamSize, a.Rate, a.Rating, a.ImageRef, a.CreatedAt, a.UpdatedAt)
}

func testAgency() model.Agency {
	now := time.Now().UTC()
	return model.Agency{
		ID:        "test-uuid",
		Name:      "Acme",
		Location:  "NY",
		TeamSize:  10,
		Rate:      "$50/hr",
		Rating:    4,
		ImageRef:  "agencies/logo.png",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAgencyPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAgencyPostgres(db)
	ctx := context.Background()
	agency := testAgency()

	mock.ExpectQuery("INSERT INTO agencies").
		WithArgs(agency.ID, agency.Name, agency.Description, agency.Location, agency.Category,
			agency.TeamSize, agency.Rate, agency.Rating, agency.ImageRef, agency.CreatedAt, agency.UpdatedAt).
		WillReturnRows(agencyRow(agency))

	result, err := repo.Create(ctx, &agency)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, agency.ID, result.ID)
	assert.Equal(t, agency.TeamSize, result.TeamSize)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgencyPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAgencyPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM agencies WHERE id = ?").
			WithArgs("test-uuid").
			WillReturnRows(agencyRow(testAgency()))

		a, err := repo.FindByID(ctx, "test-uuid")

		assert.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "Acme", a.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM agencies WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		a, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, a)
	})
}

func TestAgencyPostgres_FindAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAgencyPostgres(db)
	ctx := context.Background()

	t.Run("creation order", func(t *testing.T) {
		first := testAgency()
		second := testAgency()
		second.ID = "second-uuid"
		second.Name = "Globex"
		rows := agencyRow(first).
			AddRow(second.ID, second.Name, second.Description, second.Location, second.Category,
				second.TeamSize, second.Rate, second.Rating, second.ImageRef, second.CreatedAt, second.UpdatedAt)

		mock.ExpectQuery("SELECT (.+) FROM agencies ORDER BY created_at ASC").
			WillReturnRows(rows)

		items, err := repo.FindAll(ctx)

		assert.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Acme", items[0].Name)
		assert.Equal(t, "Globex", items[1].Name)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM agencies ORDER BY created_at ASC").
			WillReturnRows(sqlmock.NewRows(agencyCols))

		items, err := repo.FindAll(ctx)

		assert.NoError(t, err)
		assert.NotNil(t, items)
		assert.Len(t, items, 0)
	})
}

func TestAgencyPostgres_FindFiltered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAgencyPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM agencies\\s+WHERE name ILIKE (.+) AND location ILIKE").
		WithArgs("acme", "ny").
		WillReturnRows(agencyRow(testAgency()))

	items, err := repo.FindFiltered(ctx, "acme", "ny")

	assert.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme", items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgencyPostgres_FindFeatured(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAgencyPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM agencies\\s+WHERE rating >= (.+) ORDER BY rating DESC").
		WithArgs(4.0, 6).
		WillReturnRows(agencyRow(testAgency()))

	items, err := repo.FindFeatured(ctx, 4.0, 6)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgencyPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAgencyPostgres(db)
	ctx := context.Background()

	t.Run("partial update sets only the given columns", func(t *testing.T) {
		location := "Berlin"
		updated := testAgency()
		updated.Location = location

		mock.ExpectQuery(`UPDATE agencies SET location = \$1, updated_at = \$2 WHERE id = \$3 RETURNING`).
			WithArgs(location, sqlmock.AnyArg(), "test-uuid").
			WillReturnRows(agencyRow(updated))

		result, err := repo.Update(ctx, "test-uuid", model.AgencyUpdate{Location: &location})

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "Berlin", result.Location)
	})

	t.Run("multiple fields", func(t *testing.T) {
		name := "Acme Corp"
		rating := 4.5
		updated := testAgency()
		updated.Name = name
		updated.Rating = rating

		mock.ExpectQuery(`UPDATE agencies SET name = \$1, rating = \$2, updated_at = \$3 WHERE id = \$4 RETURNING`).
			WithArgs(name, rating, sqlmock.AnyArg(), "test-uuid").
			WillReturnRows(agencyRow(updated))

		result, err := repo.Update(ctx, "test-uuid", model.AgencyUpdate{Name: &name, Rating: &rating})

		assert.NoError(t, err)
		assert.Equal(t, name, result.Name)
	})

	t.Run("not found", func(t *testing.T) {
		location := "Berlin"
		mock.ExpectQuery(`UPDATE agencies SET location = \$1, updated_at = \$2 WHERE id = \$3 RETURNING`).
			WithArgs(location, sqlmock.AnyArg(), "missing").
			WillReturnError(sql.ErrNoRows)

		result, err := repo.Update(ctx, "missing", model.AgencyUpdate{Location: &location})

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, result)
	})
}

func TestAgencyPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAgencyPostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM agencies WHERE id = ?").
			WithArgs("test-uuid").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "test-uuid"))
	})

	t.Run("missing row reports no rows", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM agencies WHERE id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "missing"), sql.ErrNoRows)
	})
}
