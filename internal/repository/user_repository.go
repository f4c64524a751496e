package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/utils"
)

// UserRepo provides access to the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  The password is hashed
// with bcrypt before storage.  Duplicate email or CPF violations are
// translated into ErrEmailExists / ErrCPFExists by inspecting the
// MySQL duplicate-key error message.
func (r *UserRepo) Create(ctx context.Context, name, email, password, cpf, phone string, avatarURL *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, cpf, phone, avatar_url) VALUES (?,?,?,?,?,?)",
		name, email, hash, cpf, phone, avatarURL)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "cpf") {
				return 0, ErrCPFExists
			}
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
	var u model.User
	var avatar sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,cpf,phone,avatar_url,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CPF, &u.Phone, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if avatar.Valid {
		a := avatar.String
		u.AvatarURL = &a
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	var avatar sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,cpf,phone,avatar_url,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CPF, &u.Phone, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if avatar.Valid {
		a := avatar.String
		u.AvatarURL = &a
	}
	return u, err
}
