package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	got := dsn("api", "s3cret", "db.internal", "3307", "tournoi")
	assert.Contains(t, got, "api:s3cret@tcp(db.internal:3307)/tournoi")
	assert.Contains(t, got, "parseTime=true", "DATETIME columns must scan into time.Time")
	assert.Contains(t, got, "charset=utf8mb4")
}

func TestDSNWithoutPassword(t *testing.T) {
	got := dsn("root", "", "localhost", "3306", "tournoi")
	assert.Contains(t, got, "root@tcp(localhost:3306)/tournoi")
}
