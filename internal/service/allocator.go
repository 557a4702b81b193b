package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"enrollhub/internal/model"
)

// ErrAllocationRace is returned when every allocation attempt lost the
// race for its candidate identifier.
var ErrAllocationRace = errors.New("order id allocation failed after retries")

const (
	idTag           = "#aEH"
	maxAllocRetries = 5
)

// Allocator hands out human-readable order identifiers, one series per
// (plan type, category) prefix.
type Allocator struct {
	db *sql.DB
}

func NewAllocator(db *sql.DB) *Allocator {
	return &Allocator{db: db}
}

// SeriesPrefix encodes the identifier series for a plan selection:
// the fixed tag, a one-letter type code and a one-letter category code.
func SeriesPrefix(planType, category string) string {
	typeCode := "s"
	if strings.Contains(planType, PlanElite) {
		typeCode = "e"
	}
	catCode := "a"
	if strings.Contains(category, "boards") {
		catCode = "b"
	}
	return idTag + typeCode + catCode
}

// Allocate reserves a placeholder payment row and assigns it the next
// identifier in the series. The candidate comes from the series' highest
// assigned sequence, so gaps left by deleted rows never produce a
// candidate that still exists. The read is only a hint: the unique index
// on custom_id is the arbiter, and a concurrent allocator winning the
// same candidate surfaces as a unique violation that we retry with a
// fresh read.
func (a *Allocator) Allocate(ctx context.Context, planType, category string) (string, error) {
	placeholderID, err := a.reserve(ctx)
	if err != nil {
		return "", err
	}

	prefix := SeriesPrefix(planType, category)

	for attempt := 0; attempt < maxAllocRetries; attempt++ {
		var maxSeq int
		err = a.db.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(CAST(SUBSTRING(custom_id FROM CHAR_LENGTH($1) + 1) AS INTEGER)), 0)
			FROM payments
			WHERE custom_id LIKE $1 || '%'
		`, prefix).Scan(&maxSeq)
		if err != nil {
			return "", fmt.Errorf("read series max: %w", err)
		}

		candidate := fmt.Sprintf("%s%03d", prefix, maxSeq+1)

		_, err = a.db.ExecContext(ctx,
			`UPDATE payments SET custom_id = $1 WHERE id = $2`,
			candidate, placeholderID,
		)
		if err == nil {
			return candidate, nil
		}
		if !isUniqueViolation(err) {
			return "", fmt.Errorf("assign order id: %w", err)
		}
	}

	return "", ErrAllocationRace
}

// reserve inserts the placeholder row that the allocated identifier will
// be written onto. The temporary custom id keeps the row addressable and
// satisfies the unique constraint until allocation succeeds.
func (a *Allocator) reserve(ctx context.Context) (string, error) {
	var id string
	err := a.db.QueryRowContext(ctx,
		`INSERT INTO payments (custom_id, status) VALUES ($1, $2) RETURNING id`,
		uuid.NewString(), model.StatusInit,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("reserve payment row: %w", err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
