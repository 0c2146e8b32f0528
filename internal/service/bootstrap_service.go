package service

import (
	"context"
	"fmt"
	"log/slog"

	"go-survey-admin/internal/model"
)

type roleSeeder interface {
	Ensure(ctx context.Context, name string) (bool, error)
	FindByName(ctx context.Context, name string) (model.Role, error)
}

type userSeeder interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u *model.User) error
}

type demoAccount struct {
	email    string
	phone    string
	username string
	fullName string
	avatar   string
	position string
	role     string
}

var demoAccounts = []demoAccount{
	{"admin@gmail.com", "0123456789", "admin", "Quản trị viên", "avatarAdmin", "Quản trị viên", model.RoleAdmin},
	{"minh.nguyen@example.com", "0901234567", "nguyenminh", "Nguyễn Minh", "avatarNguyenMinh.avif", "Tiến sĩ tâm lý học", model.RoleSpecialist},
	{"huong.tran@example.com", "0912345678", "tranhuong", "Trần Hương", "avatarTranHuong.avif", "Thạc sĩ công tác xã hội", model.RoleSpecialist},
	{"tuan.pham@example.com", "0923456789", "phamtuan", "Phạm Tuấn", "avatarPhamTuan.avif", "Bác sĩ tâm thần học", model.RoleSpecialist},
	{"linh.do@example.com", "0934567890", "dolinh", "Đỗ Linh", "avatarDoLinh.jpg", "Thạc sĩ tâm lý học giáo dục", model.RoleSpecialist},
	{"hung.le@example.com", "0945678901", "lehung", "Lê Hùng", "avatarLeHung.avif", "Chuyên gia tư vấn tâm lý", model.RoleSpecialist},
	{"user@gmail.com", "0123456789", "user", "Nguyễn Văn A", "avatarUser", "Người dùng", model.RoleUser},
}

// BootstrapService seeds the roles and, on an empty database, the
// demonstration accounts. Running it again changes nothing.
type BootstrapService struct {
	roles    roleSeeder
	users    userSeeder
	hasher   PasswordHasher
	tx       transactor
	password string
}

func NewBootstrapService(roles roleSeeder, users userSeeder, hasher PasswordHasher, tx transactor, password string) *BootstrapService {
	return &BootstrapService{roles: roles, users: users, hasher: hasher, tx: tx, password: password}
}

func (s *BootstrapService) Seed(ctx context.Context) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, name := range model.Roles {
			created, err := s.roles.Ensure(ctx, name)
			if err != nil {
				return err
			}
			if created {
				slog.Info("seeded role", "role", name)
			}
		}

		count, err := s.users.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			slog.Debug("users already present; skipping demo accounts", "count", count)
			return nil
		}

		hash, err := s.hasher.Hash(s.password)
		if err != nil {
			return err
		}

		roles := make(map[string]model.Role, len(model.Roles))
		for _, acc := range demoAccounts {
			role, ok := roles[acc.role]
			if !ok {
				role, err = s.roles.FindByName(ctx, acc.role)
				if err != nil {
					return err
				}
				roles[acc.role] = role
			}

			user := model.User{
				Username:     acc.username,
				FullName:     acc.fullName,
				PasswordHash: hash,
				Email:        acc.email,
				Phone:        acc.phone,
				Avatar:       acc.avatar,
				Position:     acc.position,
				Role:         role,
			}
			if err := s.users.Create(ctx, &user); err != nil {
				return fmt.Errorf("seed user %s: %w", acc.username, err)
			}
		}

		slog.Info("seeded demo accounts", "count", len(demoAccounts))
		return nil
	})
}
