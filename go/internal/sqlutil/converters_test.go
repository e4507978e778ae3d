package sqlutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringConverters(t *testing.T) {
	assert.Equal(t, sql.NullString{}, ToSqlString(NonEmpty("  ")))
	assert.Equal(t, sql.NullString{String: "a.png", Valid: true}, ToSqlString(NonEmpty("a.png")))

	assert.Equal(t, "fallback", FromSqlString(sql.NullString{}, "fallback"))
	assert.Equal(t, "a.png", FromSqlString(sql.NullString{String: "a.png", Valid: true}, "fallback"))
}
