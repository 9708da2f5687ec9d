package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/models"
)

// failingConnPool answers every statement with err and records the SQL it was given.
type failingConnPool struct {
	err     error
	queries []string
}

func (p *failingConnPool) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	p.queries = append(p.queries, query)
	return nil, p.err
}

func (p *failingConnPool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	p.queries = append(p.queries, query)
	return nil, p.err
}

func (p *failingConnPool) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	p.queries = append(p.queries, query)
	return nil, p.err
}

func (p *failingConnPool) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	p.queries = append(p.queries, query)
	return nil
}

// newPostgresRepository uses the real postgres dialector, configured like database.NewConnection.
func newPostgresRepository(t *testing.T, err error) (*failingConnPool, *emailRepository) {
	t.Helper()
	pool := &failingConnPool{err: err}
	db, openErr := gorm.Open(postgres.New(postgres.Config{Conn: pool}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, openErr)
	return pool, NewEmailRepository(db).(*emailRepository)
}

func testEmail(messageID string) *models.Email {
	return &models.Email{
		MessageID: messageID,
		Subject:   "Interview invitation",
		From:      "Jane <jane@example.com>",
		To:        "me@example.com",
		Date:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Body:      "hello",
	}
}

func TestInsert_UniqueViolationIsDuplicateKey(t *testing.T) {
	pool, repo := newPostgresRepository(t, &pgconn.PgError{
		Code:           "23505",
		Message:        `duplicate key value violates unique constraint "idx_classified_emails_message_id"`,
		ConstraintName: "idx_classified_emails_message_id",
	})

	err := repo.Insert(context.Background(), testEmail("dup@example.com"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mserrors.ErrDuplicateKey))
	assert.Contains(t, err.Error(), "dup@example.com")

	require.NotEmpty(t, pool.queries)
	assert.Contains(t, pool.queries[0], `INSERT INTO "classified_emails"`)
}

func TestInsert_OtherPostgresErrorIsNotDuplicate(t *testing.T) {
	_, repo := newPostgresRepository(t, &pgconn.PgError{Code: "22021", Message: "invalid byte sequence for encoding \"UTF8\""})

	err := repo.Insert(context.Background(), testEmail("bad@example.com"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, mserrors.ErrDuplicateKey))
	assert.Contains(t, err.Error(), "failed to insert email")
}

func TestInsert_RejectsMissingMessageID(t *testing.T) {
	pool, repo := newPostgresRepository(t, nil)

	assert.ErrorIs(t, repo.Insert(context.Background(), testEmail("")), ErrInvalidInput)
	assert.ErrorIs(t, repo.Insert(context.Background(), nil), ErrInvalidInput)
	assert.Empty(t, pool.queries)
}

func TestExists_QueriesByMessageID(t *testing.T) {
	pool, repo := newPostgresRepository(t, errors.New("connection reset by peer"))

	exists, err := repo.Exists(context.Background(), "abc@example.com")
	require.Error(t, err)
	assert.False(t, exists)
	assert.Contains(t, err.Error(), "failed to check email existence")

	require.NotEmpty(t, pool.queries)
	assert.Contains(t, pool.queries[0], `"classified_emails"`)
	assert.Contains(t, pool.queries[0], "message_id = $1")
}

func TestExists_RejectsEmptyMessageID(t *testing.T) {
	_, repo := newPostgresRepository(t, nil)

	_, err := repo.Exists(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
