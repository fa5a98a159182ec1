package query

import (
	"testing"

	"resto-chatbot/internal/common/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValidate(t *testing.T, text string) ValidatedIntent {
	t.Helper()
	v, err := NewValidator(DefaultWhitelist(), 100).Validate(mustParse(t, text))
	require.NoError(t, err)
	return v
}

func TestCompile_DefaultProjectionAndLimit(t *testing.T) {
	stmt, err := Compile(mustValidate(t, `{"action":"select","table":"menus"}`), database.DialectMySQL, 10)
	require.NoError(t, err)

	assert.Equal(t, "SELECT `name`, `price`, `description`, `category` FROM `menus` LIMIT ?", stmt.SQL)
	assert.Equal(t, []interface{}{10}, stmt.Args)
}

func TestCompile_EmptyColumnsUseDefaultProjection(t *testing.T) {
	stmt, err := Compile(mustValidate(t, `{"action":"select","table":"menus","columns":[]}`), database.DialectSQLite, 10)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "name", "price", "description", "category" FROM "menus" LIMIT ?`, stmt.SQL)
}

func TestCompile_PostgresPlaceholders(t *testing.T) {
	stmt, err := Compile(mustValidate(t, `{
		"action": "select",
		"table": "menus",
		"columns": ["name", "price"],
		"filters": [
			{"column": "category", "op": "like", "value": "%dingin%"},
			{"column": "price", "op": "<=", "value": 30000},
			{"column": "id", "op": "in", "value": [1, 2, 3]}
		],
		"order_by": [{"column": "order_count", "direction": "desc"}, {"column": "name"}],
		"limit": 5
	}`), database.DialectPostgres, 10)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT "name", "price" FROM "menus" WHERE "category"::text ILIKE $1 AND "price" <= $2 AND "id" IN ($3, $4, $5) ORDER BY "order_count" DESC, "name" ASC LIMIT $6`,
		stmt.SQL)
	assert.Equal(t, []interface{}{"%dingin%", int64(30000), int64(1), int64(2), int64(3), 5}, stmt.Args)
	assert.Empty(t, stmt.Dropped)
}

func TestCompile_ValuesAreNeverInterpolated(t *testing.T) {
	evil := `x'; DROP TABLE menus; --`
	stmt, err := Compile(mustValidate(t, `{"action":"select","table":"menus","filters":[{"column":"name","op":"=","value":"`+evil+`"}]}`), database.DialectMySQL, 10)
	require.NoError(t, err)

	assert.NotContains(t, stmt.SQL, "DROP")
	assert.Equal(t, evil, stmt.Args[0])
}

func TestCompile_InWithScalarIsDropped(t *testing.T) {
	stmt, err := Compile(mustValidate(t, `{"action":"select","table":"menus","filters":[{"column":"price","op":"in","value":"30000"}]}`), database.DialectMySQL, 10)
	require.NoError(t, err)

	assert.Equal(t, "SELECT `name`, `price`, `description`, `category` FROM `menus` LIMIT ?", stmt.SQL)
	require.Len(t, stmt.Dropped, 1)
	assert.Equal(t, "price", stmt.Dropped[0].Column)
}

func TestCompile_EmptyInMatchesNothing(t *testing.T) {
	stmt, err := Compile(mustValidate(t, `{"action":"select","table":"menus","filters":[{"column":"id","op":"in","value":[]}]}`), database.DialectMySQL, 10)
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, "WHERE 1 = 0")
}

func TestCompile_NonScalarComparisonValue(t *testing.T) {
	_, err := Compile(mustValidate(t, `{"action":"select","table":"menus","filters":[{"column":"price","op":">","value":{"a":1}}]}`), database.DialectMySQL, 10)
	assert.Error(t, err)

	_, err = Compile(mustValidate(t, `{"action":"select","table":"menus","filters":[{"column":"id","op":"in","value":[[1]]}]}`), database.DialectMySQL, 10)
	assert.Error(t, err)
}

func TestCompile_FloatValue(t *testing.T) {
	stmt, err := Compile(mustValidate(t, `{"action":"select","table":"menus","filters":[{"column":"price","op":">","value":12.5}]}`), database.DialectMySQL, 10)
	require.NoError(t, err)
	assert.Equal(t, 12.5, stmt.Args[0])
}

func TestCompile_RejectsUnvalidatedIntent(t *testing.T) {
	_, err := Compile(ValidatedIntent{}, database.DialectPostgres, 10)
	assert.Error(t, err)
}

func TestCompile_LikeOnNumericColumn(t *testing.T) {
	intent := `{"action":"select","table":"menus","columns":["name"],"filters":[{"column":"price","op":"like","value":"%000"}]}`

	stmt, err := Compile(mustValidate(t, intent), database.DialectPostgres, 10)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "name" FROM "menus" WHERE "price"::text ILIKE $1 LIMIT $2`, stmt.SQL)

	stmt, err = Compile(mustValidate(t, intent), database.DialectMySQL, 10)
	require.NoError(t, err)
	assert.Equal(t, "SELECT `name` FROM `menus` WHERE `price` LIKE ? LIMIT ?", stmt.SQL)
}
