package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/ticket-marketplace/internal/model"
	"github.com/iliyamo/ticket-marketplace/internal/utils"
)

// UserRepo provides persistence for the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,username,email,password_hash,role,phone,created_at"

// Create hashes the password and inserts the user, returning its ID.
// A duplicate email maps the MySQL 1062 error to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, role model.Role, phone *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role, phone) VALUES (?,?,?,?,?)",
		username, email, hash, string(role), phone)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns users ordered by id with skip/limit pagination.
func (r *UserRepo) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		var phone sql.NullString
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &phone, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		if phone.Valid {
			p := phone.String
			u.Phone = &p
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	var phone sql.NullString
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &phone, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if phone.Valid {
		p := phone.String
		u.Phone = &p
	}
	return u, nil
}
