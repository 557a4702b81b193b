package worker

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSweepDeletesStalePlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM payments`).
		WithArgs("INIT", sqlmock.AnyArg(), 100).
		WillReturnResult(sqlmock.NewResult(0, 3))

	w := NewCleanupWorker(db)
	if err := w.sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
