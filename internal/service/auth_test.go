package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterDuplicateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = NewAuthService(db).Register(context.Background(), "Asha", "a@b.in", "9999999999", "pw")
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
}

func TestRegisterReturnsUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at"}).
			AddRow("u-1", "Asha", "a@b.in", "9999999999", now))

	user, err := NewAuthService(db).Register(context.Background(), "Asha", "a@b.in", "9999999999", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID != "u-1" || user.Email != "a@b.in" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name", "email", "phone", "password_hash", "created_at"}).
			AddRow("u-1", "Asha", "a@b.in", "9999999999", hash, time.Now())
	}

	t.Run("correct password", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, email, phone, password_hash`).
			WithArgs("a@b.in").
			WillReturnRows(userRow())

		user, err := NewAuthService(db).Authenticate(context.Background(), "a@b.in", "correct")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if user.ID != "u-1" {
			t.Errorf("user id = %q", user.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, email, phone, password_hash`).
			WithArgs("a@b.in").
			WillReturnRows(userRow())

		_, err = NewAuthService(db).Authenticate(context.Background(), "a@b.in", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown identifier", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, email, phone, password_hash`).
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "password_hash", "created_at"}))

		_, err = NewAuthService(db).Authenticate(context.Background(), "nobody", "pw")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}
