package query

import (
	"context"
	stderrors "errors"
	"testing"

	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/errors"
	"resto-chatbot/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockExecutor(t *testing.T, dialect database.Dialect) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewExecutor(database.NewSQLFromDB(db, dialect), logger.NewTestLogger(t), 10), mock
}

func TestExecute_FavouriteMenuOrdering(t *testing.T) {
	exec, mock := newMockExecutor(t, database.DialectMySQL)

	mock.ExpectQuery("SELECT `name`, `price`, `description`, `category` FROM `menus` ORDER BY `order_count` DESC LIMIT ?").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "description", "category"}).
			AddRow([]byte("Nasi Goreng Spesial"), int64(35000), []byte("Nasi goreng dengan telur"), []byte("makanan")).
			AddRow([]byte("Es Teh Manis"), int64(8000), []byte("Teh manis dingin"), []byte("minuman")))

	v := mustValidate(t, `{"action":"select","table":"menus","order_by":[{"column":"order_count","direction":"desc"}]}`)
	rows, err := exec.Execute(context.Background(), v)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	name, _ := rows[0].Get("name")
	assert.Equal(t, "Nasi Goreng Spesial", name)
	assert.Equal(t, "name", rows[0][0].Name)
	assert.Equal(t, "category", rows[0][3].Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_UsesIntentLimit(t *testing.T) {
	exec, mock := newMockExecutor(t, database.DialectPostgres)

	mock.ExpectQuery(`SELECT "name" FROM "menus" ORDER BY "order_count" DESC LIMIT $1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a").AddRow("b").AddRow("c"))

	v := mustValidate(t, `{"action":"select","table":"menus","columns":["name"],"order_by":[{"column":"order_count","direction":"desc"}],"limit":3}`)
	rows, err := exec.Execute(context.Background(), v)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ScalarInFilterBehavesAsAbsent(t *testing.T) {
	exec, mock := newMockExecutor(t, database.DialectMySQL)

	mock.ExpectQuery("SELECT `name`, `price`, `description`, `category` FROM `menus` LIMIT ?").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "description", "category"}))

	v := mustValidate(t, `{"action":"select","table":"menus","filters":[{"column":"price","op":"in","value":"30000"}]}`)
	rows, err := exec.Execute(context.Background(), v)
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_DataAccessFailure(t *testing.T) {
	exec, mock := newMockExecutor(t, database.DialectMySQL)

	mock.ExpectQuery("SELECT `name`, `price`, `description`, `category` FROM `menus` LIMIT ?").
		WillReturnError(stderrors.New("connection reset"))

	_, err := exec.Execute(context.Background(), mustValidate(t, `{"action":"select","table":"menus"}`))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrDataAccessFailure))
	assert.Equal(t, errors.MsgInternal, errors.UserMessage(err))
}

func TestExecute_UnbindableValueIsDataAccessFailure(t *testing.T) {
	exec, _ := newMockExecutor(t, database.DialectMySQL)

	_, err := exec.Execute(context.Background(), mustValidate(t, `{"action":"select","table":"menus","filters":[{"column":"price","op":"=","value":[1]}]}`))
	assert.True(t, stderrors.Is(err, errors.ErrDataAccessFailure))
}

func TestExecute_ZeroIntentNeverReachesTheStore(t *testing.T) {
	exec, mock := newMockExecutor(t, database.DialectMySQL)

	_, err := exec.Execute(context.Background(), ValidatedIntent{})
	assert.True(t, stderrors.Is(err, errors.ErrDataAccessFailure))
	require.NoError(t, mock.ExpectationsWereMet())
}
