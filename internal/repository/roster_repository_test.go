package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRosterRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestSubjectRepositoryListForTimetable(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "periods_per_class", "phases", "created_at", "updated_at"}).
		AddRow("math", "MTH", "Math", 8, "{lower,upper}", time.Now(), time.Now()).
		AddRow("art", "ART", "Art", 1, "{upper}", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE $1 = ANY(phases) ORDER BY code ASC, id ASC")).
		WithArgs("upper").
		WillReturnRows(rows)

	subjects, err := repo.ListForTimetable(context.Background(), "upper")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, 8, subjects[0].PeriodsPerClass)
	assert.Equal(t, []string{"lower", "upper"}, []string(subjects[0].Phases))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListAllPhases(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects ORDER BY code ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "periods_per_class", "phases", "created_at", "updated_at"}))

	subjects, err := repo.ListForTimetable(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "quota_limit", "specialization_id", "active", "created_at", "updated_at"}).
		AddRow("t1", "Teacher A", 24, "math", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE active = TRUE ORDER BY full_name ASC, id ASC")).
		WillReturnRows(rows)

	teachers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Teacher A", teachers[0].Name)
	assert.Equal(t, 24, teachers[0].QuotaLimit)
	assert.Equal(t, "math", teachers[0].SpecializationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery("FROM teachers WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCount(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE grade = $1")).
		WithArgs("10").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	count, err := repo.Count(context.Background(), "10")
	require.NoError(t, err)
	assert.Equal(t, 6, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
