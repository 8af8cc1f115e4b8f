package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"parkease/internal/db"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(database *sql.DB) *UserRepository {
	return &UserRepository{DB: database}
}

// GetByUsername returns nil, nil when no such user exists.
func (r *UserRepository) GetByUsername(username string) (*db.User, error) {
	var u db.User
	err := r.DB.QueryRow(
		`SELECT id, username, email, phone, password_hash, role, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user by username: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*db.User, error) {
	var u db.User
	err := r.DB.QueryRow(
		`SELECT id, username, email, phone, password_hash, role, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(id int) (*db.User, error) {
	var u db.User
	err := r.DB.QueryRow(
		`SELECT id, username, email, phone, password_hash, role, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user by id: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(username, email, phone, password, role string) (*db.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	var u db.User
	err = r.DB.QueryRow(
		`INSERT INTO users (username, email, phone, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, username, email, phone, password_hash, role, created_at`,
		username, email, phone, hashed, role,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) ListByRole(role string) ([]db.User, error) {
	rows, err := r.DB.Query(
		`SELECT id, username, email, phone, password_hash, role, created_at FROM users WHERE role = $1 ORDER BY username`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// EnsureAdmin creates the admin account on first boot if none exists.
func (r *UserRepository) EnsureAdmin(username, email, password string) error {
	var count int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE role = $1`, db.RoleAdmin).Scan(&count); err != nil {
		return fmt.Errorf("error counting admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err := r.Create(username, email, "", password, db.RoleAdmin)
	return err
}
