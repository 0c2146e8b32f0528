package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-survey-admin/internal/database"
	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

const userSelect = `SELECT u.id, u.username, u.fullname, u.password_hash, u.email, u.phone,
       u.avatar, u.position, r.id, r.name, u.created_at, u.updated_at
FROM users u
JOIN roles r ON r.id = u.role_id`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) conn(ctx context.Context) database.DBTX {
	return database.Executor(ctx, r.db)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(r.conn(ctx).QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apierror.NotFound(model.ErrUserNotFound, "user not found", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	u, err := scanUser(r.conn(ctx).QueryRowContext(ctx, userSelect+` WHERE u.username = $1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apierror.NotFound(model.ErrUserNotFound, "user not found", username)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// Search pages through users matching the filter. Page and Limit must
// already be normalized.
func (r *UserRepository) Search(ctx context.Context, filter model.UserFilter) ([]model.User, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)
	argIdx := 1

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		where = append(where, fmt.Sprintf(
			"(u.username ILIKE $%d OR u.fullname ILIKE $%d OR u.email ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+keyword+"%")
		argIdx++
	}
	if roleName := strings.TrimSpace(filter.RoleName); roleName != "" {
		where = append(where, fmt.Sprintf("r.name = upper($%d)", argIdx))
		args = append(args, strings.TrimPrefix(strings.ToUpper(roleName), "ROLE_"))
		argIdx++
	}
	if major := strings.TrimSpace(filter.MajorName); major != "" {
		where = append(where, fmt.Sprintf("u.position ILIKE $%d", argIdx))
		args = append(args, "%"+major+"%")
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users u JOIN roles r ON r.id = u.role_id` + whereClause
	if err := r.conn(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	dataQuery := fmt.Sprintf("%s%s ORDER BY u.id LIMIT $%d OFFSET $%d", userSelect, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	users, err := r.queryUsers(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, roleName string) ([]model.User, error) {
	users, err := r.queryUsers(ctx, userSelect+` WHERE r.name = $1 ORDER BY u.fullname`, roleName)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// Create inserts u and fills in its generated id and timestamps.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO users (username, fullname, password_hash, email, phone, avatar, position, role_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		u.Username, u.FullName, u.PasswordHash, u.Email, u.Phone, u.Avatar, u.Position, u.Role.ID).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return apierror.Conflict(model.ErrUserAlreadyExists, "user already exists", u.Username)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	err := r.conn(ctx).QueryRowContext(ctx,
		`UPDATE users
		 SET fullname = $2, password_hash = $3, email = $4, phone = $5, avatar = $6,
		     position = $7, role_id = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		u.ID, u.FullName, u.PasswordHash, u.Email, u.Phone, u.Avatar, u.Position, u.Role.ID).
		Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apierror.NotFound(model.ErrUserNotFound, "user not found", strconv.FormatInt(u.ID, 10))
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireAffected(res, model.ErrUserNotFound, "user not found", id)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, model.ErrUserNotFound, "user not found", id)
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row scanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.PasswordHash, &u.Email, &u.Phone,
		&u.Avatar, &u.Position, &u.Role.ID, &u.Role.Name, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func requireAffected(res sql.Result, sentinel error, message string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apierror.NotFound(sentinel, message, strconv.FormatInt(id, 10))
	}
	return nil
}
