package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"enrollhub/internal/model"
)

var (
	ErrUserExists         = errors.New("user with this email or phone already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService struct {
	db *sql.DB
}

func NewAuthService(db *sql.DB) *AuthService {
	return &AuthService{db: db}
}

func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query := `INSERT INTO users (name, email, phone, password_hash) VALUES ($1, $2, $3, $4)
	          RETURNING id, name, email, phone, created_at`
	row := s.db.QueryRowContext(ctx, query, name, email, phone, hash)

	var user model.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	user.PasswordHash = hash

	return &user, nil
}

// Authenticate accepts either the email or the phone number as the login
// identifier.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*model.User, error) {
	query := `SELECT id, name, email, phone, password_hash, created_at FROM users
	          WHERE email = $1 OR phone = $1`
	row := s.db.QueryRowContext(ctx, query, identifier)

	var user model.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

func (s *AuthService) Get(ctx context.Context, userID string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, created_at FROM users WHERE id = $1`, userID)

	var user model.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}
