package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go-survey-admin/internal/database"
	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// FindByName accepts both "ADMIN" and "ROLE_ADMIN".
func (r *RoleRepository) FindByName(ctx context.Context, name string) (model.Role, error) {
	name = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "ROLE_")

	var role model.Role
	err := database.Executor(ctx, r.db).
		QueryRowContext(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, apierror.NotFound(model.ErrRoleNotFound, "role not found", name)
	}
	if err != nil {
		return model.Role{}, fmt.Errorf("find role by name: %w", err)
	}
	return role, nil
}

// Ensure inserts the role when missing and reports whether it did.
func (r *RoleRepository) Ensure(ctx context.Context, name string) (bool, error) {
	res, err := database.Executor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return false, fmt.Errorf("ensure role %s: %w", name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure role %s: %w", name, err)
	}
	return affected > 0, nil
}
