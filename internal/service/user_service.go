package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

type userStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Search(ctx context.Context, filter model.UserFilter) ([]model.User, int, error)
	ListByRole(ctx context.Context, roleName string) ([]model.User, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

type roleFinder interface {
	FindByName(ctx context.Context, name string) (model.Role, error)
}

type UserService struct {
	users  userStore
	roles  roleFinder
	hasher PasswordHasher
	tx     transactor
	audit  auditLogger
}

func NewUserService(users userStore, roles roleFinder, hasher PasswordHasher, tx transactor, audit auditLogger) *UserService {
	return &UserService{users: users, roles: roles, hasher: hasher, tx: tx, audit: audit}
}

func (s *UserService) FindByID(ctx context.Context, id int64) (model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.Response(), nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (model.UserResponse, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.Response(), nil
}

func (s *UserService) FindAll(ctx context.Context, filter model.UserFilter) ([]model.UserResponse, model.Meta, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	users, total, err := s.users.Search(ctx, filter)
	if err != nil {
		return nil, model.Meta{}, err
	}
	return model.UserResponses(users), model.NewMeta(filter.Page, filter.Limit, total), nil
}

func (s *UserService) ListSpecialists(ctx context.Context) ([]model.UserResponse, error) {
	return s.listByRole(ctx, model.RoleSpecialist)
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.UserResponse, error) {
	return s.listByRole(ctx, model.RoleUser)
}

func (s *UserService) listByRole(ctx context.Context, role string) ([]model.UserResponse, error) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	return model.UserResponses(users), nil
}

func (s *UserService) Create(ctx context.Context, actor model.AuditActor, req model.CreateUserRequest) (model.UserResponse, error) {
	var created model.User
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		role, err := s.roles.FindByName(ctx, req.Role)
		if err != nil {
			return err
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return err
		}

		created = model.User{
			Username:     strings.TrimSpace(req.Username),
			FullName:     strings.TrimSpace(req.FullName),
			PasswordHash: hash,
			Email:        strings.TrimSpace(req.Email),
			Phone:        strings.TrimSpace(req.Phone),
			Avatar:       strings.TrimSpace(req.Avatar),
			Position:     strings.TrimSpace(req.Position),
			Role:         role,
		}
		return s.users.Create(ctx, &created)
	})

	recordAudit(ctx, s.audit, "user.create", actor, userResource(created.ID), nil, created.Response(), err)
	if err != nil {
		return model.UserResponse{}, err
	}
	return created.Response(), nil
}

func (s *UserService) Update(ctx context.Context, actor model.AuditActor, id int64, req model.UpdateUserRequest) (model.UserResponse, error) {
	var before, after model.UserResponse
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		before = user.Response()

		role, err := s.roles.FindByName(ctx, req.Role)
		if err != nil {
			return err
		}

		if req.Password != "" {
			hash, err := s.hasher.Hash(req.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}

		user.FullName = strings.TrimSpace(req.FullName)
		user.Email = strings.TrimSpace(req.Email)
		user.Phone = strings.TrimSpace(req.Phone)
		user.Avatar = strings.TrimSpace(req.Avatar)
		user.Position = strings.TrimSpace(req.Position)
		user.Role = role

		if err := s.users.Update(ctx, &user); err != nil {
			return err
		}
		after = user.Response()
		return nil
	})

	recordAudit(ctx, s.audit, "user.update", actor, userResource(id), before, after, err)
	if err != nil {
		return model.UserResponse{}, err
	}
	return after, nil
}

// Delete removes a user. Callers cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, actor model.AuditActor, id int64) error {
	var before model.UserResponse
	err := func() error {
		if actor.UserID == id {
			return apierror.Invalid(model.ErrCannotDeleteSelf, "You cannot delete your own account", strconv.FormatInt(id, 10))
		}
		return s.tx.InTx(ctx, func(ctx context.Context) error {
			user, err := s.users.FindByID(ctx, id)
			if err != nil {
				return err
			}
			before = user.Response()
			return s.users.Delete(ctx, id)
		})
	}()

	recordAudit(ctx, s.audit, "user.delete", actor, userResource(id), before, nil, err)
	return err
}

// ChangePassword lets a user change their own password, proving the
// current one, and lets an admin reset anyone's.
func (s *UserService) ChangePassword(ctx context.Context, actor model.AuditActor, id int64, req model.ChangePasswordRequest) error {
	isAdmin := model.IsAdmin(actor.Role)

	err := func() error {
		if !isAdmin && actor.UserID != id {
			return apierror.Forbidden(model.ErrForbidden, "You can only change your own password", strconv.FormatInt(id, 10))
		}
		return s.tx.InTx(ctx, func(ctx context.Context) error {
			user, err := s.users.FindByID(ctx, id)
			if err != nil {
				return err
			}

			if !isAdmin {
				if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
					return err
				}
			}

			hash, err := s.hasher.Hash(req.NewPassword)
			if err != nil {
				return err
			}
			return s.users.UpdatePassword(ctx, id, hash)
		})
	}()

	recordAudit(ctx, s.audit, "user.change_password", actor, userResource(id), nil, nil, err)
	return err
}

func userResource(id int64) string {
	if id == 0 {
		return "users"
	}
	return fmt.Sprintf("users/%d", id)
}
