package testutil

import (
	"database/sql"
	"embed"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/haruki/examquest/internal/models"
)

//go:embed migrations/*.sql
var testMigrationsFS embed.FS

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)

	migrations := []string{
		"migrations/0001_init.sql",
	}

	for _, migration := range migrations {
		sqlBytes, err := testMigrationsFS.ReadFile(migration)
		require.NoError(t, err, "failed to read migration %s", migration)

		_, err = db.Exec(string(sqlBytes))
		require.NoError(t, err, "failed to apply migration %s", migration)
	}

	return db
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Questions builds a pool of n distinct four-answer questions with ids
// starting at firstID. Answer index 0 is always the correct one so tests can
// find it after reshuffling by text.
func Questions(firstID, n int) []models.Question {
	pool := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		id := firstID + i
		pool = append(pool, models.Question{
			ID:   id,
			Text: fmt.Sprintf("question %d", id),
			Answers: []string{
				fmt.Sprintf("right-%d", id),
				fmt.Sprintf("wrong-%d-a", id),
				fmt.Sprintf("wrong-%d-b", id),
				fmt.Sprintf("wrong-%d-c", id),
			},
			Correct:     0,
			Explanation: fmt.Sprintf("explanation %d", id),
		})
	}
	return pool
}
