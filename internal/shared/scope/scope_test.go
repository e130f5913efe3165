package scope_test

import (
	"testing"
	"time"

	"hrms-lite/internal/shared/dbtest"
	"hrms-lite/internal/shared/scope"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

type row struct {
	ID   string
	Date time.Time
}

func TestDateRangeAndInStrings(t *testing.T) {
	db, mock := dbtest.NewMock(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "rows" WHERE date >= \$1 AND date <= \$2 AND department IN \(\$3,\$4\)`).
		WithArgs("2025-01-01", "2025-01-31", "HR", "Sales").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date"}))

	var rows []row
	err := db.Table("rows").
		Scopes(scope.DateRange("date", &from, &to), scope.InStrings("department", []string{"HR", "Sales"})).
		Find(&rows).Error

	assert.NoError(t, err)
}

func TestScopes_NoBounds(t *testing.T) {
	db, mock := dbtest.NewMock(t)

	mock.ExpectQuery(`SELECT \* FROM "rows"$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date"}))

	var rows []row
	err := db.Table("rows").
		Scopes(scope.DateRange("date", nil, nil), scope.InStrings("department", nil)).
		Find(&rows).Error

	assert.NoError(t, err)
}
