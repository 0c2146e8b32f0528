package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

type userServiceEnv struct {
	svc    *UserService
	users  *mockUserStore
	roles  *mockRoleFinder
	audit  *recordingAudit
	hasher *BcryptHasher
}

func newUserServiceEnv() userServiceEnv {
	env := userServiceEnv{
		users:  new(mockUserStore),
		roles:  new(mockRoleFinder),
		audit:  &recordingAudit{},
		hasher: NewBcryptHasher(bcrypt.MinCost),
	}
	env.svc = NewUserService(env.users, env.roles, env.hasher, passthroughTx{}, env.audit)
	return env
}

var adminActor = model.AuditActor{UserID: 1, Username: "admin", Role: model.RoleAdmin}

func TestUserService_FindAllNormalizesPaging(t *testing.T) {
	env := newUserServiceEnv()
	users := []model.User{{ID: 2, Username: "nguyenminh", Role: model.Role{Name: model.RoleSpecialist}}}
	env.users.On("Search", mock.Anything, model.UserFilter{Keyword: "minh", Page: 1, Limit: 5}).Return(users, 6, nil)

	items, meta, err := env.svc.FindAll(context.Background(), model.UserFilter{Keyword: "minh"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.RoleSpecialist, items[0].Role)
	assert.Equal(t, []string{}, items[0].Majors)
	assert.Equal(t, model.Meta{Page: 1, Limit: 5, Total: 6, TotalPages: 2}, meta)
	env.users.AssertExpectations(t)
}

func TestUserService_Create(t *testing.T) {
	t.Run("hashes password and audits", func(t *testing.T) {
		env := newUserServiceEnv()
		env.roles.On("FindByName", mock.Anything, "SPECIALIST").Return(model.Role{ID: 2, Name: model.RoleSpecialist}, nil)
		env.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = 9 }).
			Return(nil)

		resp, err := env.svc.Create(context.Background(), adminActor, model.CreateUserRequest{
			Username: " newbie ", FullName: "New Bie", Password: "secret", Email: "n@example.com", Role: "SPECIALIST",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(9), resp.ID)
		assert.Equal(t, "newbie", resp.Username)

		created := env.users.Calls[0].Arguments.Get(1).(*model.User)
		assert.NoError(t, env.hasher.Compare(created.PasswordHash, "secret"))

		entry := env.audit.last()
		assert.Equal(t, "user.create", entry.Action)
		assert.Equal(t, model.AuditStatusSuccess, entry.Status)
		assert.Equal(t, "users/9", entry.Resource)
	})

	t.Run("unknown role", func(t *testing.T) {
		env := newUserServiceEnv()
		env.roles.On("FindByName", mock.Anything, "GUEST").
			Return(model.Role{}, apierror.NotFound(model.ErrRoleNotFound, "role not found", "GUEST"))

		_, err := env.svc.Create(context.Background(), adminActor, model.CreateUserRequest{Username: "x", Password: "1234", Role: "GUEST"})
		assert.ErrorIs(t, err, model.ErrRoleNotFound)
		env.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Equal(t, model.AuditStatusFailure, env.audit.last().Status)
	})
}

func TestUserService_UpdateKeepsPasswordWhenBlank(t *testing.T) {
	env := newUserServiceEnv()
	existing := model.User{ID: 3, Username: "tranhuong", PasswordHash: "stored-hash", Role: model.Role{ID: 2, Name: model.RoleSpecialist}}
	env.users.On("FindByID", mock.Anything, int64(3)).Return(existing, nil)
	env.roles.On("FindByName", mock.Anything, "USER").Return(model.Role{ID: 3, Name: model.RoleUser}, nil)
	env.users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.PasswordHash == "stored-hash" && u.Role.Name == model.RoleUser && u.FullName == "Trần Hương"
	})).Return(nil)

	resp, err := env.svc.Update(context.Background(), adminActor, 3, model.UpdateUserRequest{
		FullName: "Trần Hương", Email: "huong.tran@example.com", Role: "USER",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resp.Role)
	env.users.AssertExpectations(t)
}

func TestUserService_Delete(t *testing.T) {
	t.Run("refuses self delete", func(t *testing.T) {
		env := newUserServiceEnv()

		err := env.svc.Delete(context.Background(), adminActor, adminActor.UserID)
		assert.ErrorIs(t, err, model.ErrCannotDeleteSelf)
		env.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

		entry := env.audit.last()
		assert.Equal(t, "user.delete", entry.Action)
		assert.Equal(t, model.AuditStatusFailure, entry.Status)
	})

	t.Run("missing user", func(t *testing.T) {
		env := newUserServiceEnv()
		env.users.On("FindByID", mock.Anything, int64(5)).
			Return(model.User{}, apierror.NotFound(model.ErrUserNotFound, "user not found", "5"))

		err := env.svc.Delete(context.Background(), adminActor, 5)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
		env.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes", func(t *testing.T) {
		env := newUserServiceEnv()
		env.users.On("FindByID", mock.Anything, int64(5)).Return(model.User{ID: 5, Username: "lehung"}, nil)
		env.users.On("Delete", mock.Anything, int64(5)).Return(nil)

		require.NoError(t, env.svc.Delete(context.Background(), adminActor, 5))
		assert.Equal(t, "users/5", env.audit.last().Resource)
		env.users.AssertExpectations(t)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	self := model.AuditActor{UserID: 7, Username: "user", Role: model.RoleUser}

	t.Run("non admin cannot change another user", func(t *testing.T) {
		env := newUserServiceEnv()

		err := env.svc.ChangePassword(context.Background(), self, 8, model.ChangePasswordRequest{NewPassword: "abcd"})
		assert.ErrorIs(t, err, model.ErrForbidden)
		env.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("wrong current password", func(t *testing.T) {
		env := newUserServiceEnv()
		hash, err := env.hasher.Hash("1234")
		require.NoError(t, err)
		env.users.On("FindByID", mock.Anything, int64(7)).Return(model.User{ID: 7, PasswordHash: hash}, nil)

		err = env.svc.ChangePassword(context.Background(), self, 7, model.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "abcd"})
		assert.ErrorIs(t, err, model.ErrInvalidPassword)
		env.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("self with current password", func(t *testing.T) {
		env := newUserServiceEnv()
		hash, err := env.hasher.Hash("1234")
		require.NoError(t, err)
		env.users.On("FindByID", mock.Anything, int64(7)).Return(model.User{ID: 7, PasswordHash: hash}, nil)
		env.users.On("UpdatePassword", mock.Anything, int64(7), mock.AnythingOfType("string")).Return(nil)

		err = env.svc.ChangePassword(context.Background(), self, 7, model.ChangePasswordRequest{CurrentPassword: "1234", NewPassword: "abcd"})
		require.NoError(t, err)

		newHash := env.users.Calls[1].Arguments.String(2)
		assert.NoError(t, env.hasher.Compare(newHash, "abcd"))
		assert.Equal(t, "user.change_password", env.audit.last().Action)
	})

	t.Run("admin resets without current password", func(t *testing.T) {
		env := newUserServiceEnv()
		env.users.On("FindByID", mock.Anything, int64(7)).Return(model.User{ID: 7, PasswordHash: "whatever"}, nil)
		env.users.On("UpdatePassword", mock.Anything, int64(7), mock.AnythingOfType("string")).Return(nil)

		require.NoError(t, env.svc.ChangePassword(context.Background(), adminActor, 7, model.ChangePasswordRequest{NewPassword: "abcd"}))
		env.users.AssertExpectations(t)
	})

	t.Run("prefixed admin role resets", func(t *testing.T) {
		env := newUserServiceEnv()
		env.users.On("FindByID", mock.Anything, int64(7)).Return(model.User{ID: 7, PasswordHash: "whatever"}, nil)
		env.users.On("UpdatePassword", mock.Anything, int64(7), mock.AnythingOfType("string")).Return(nil)

		actor := model.AuditActor{UserID: 1, Username: "admin", Role: "role_admin"}
		require.NoError(t, env.svc.ChangePassword(context.Background(), actor, 7, model.ChangePasswordRequest{NewPassword: "abcd"}))
	})

	t.Run("password over 72 bytes", func(t *testing.T) {
		env := newUserServiceEnv()
		env.users.On("FindByID", mock.Anything, int64(7)).Return(model.User{ID: 7, PasswordHash: "whatever"}, nil)

		err := env.svc.ChangePassword(context.Background(), adminActor, 7, model.ChangePasswordRequest{NewPassword: strings.Repeat("é", 40)})

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		env.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_CreateRejectsOverlongPassword(t *testing.T) {
	env := newUserServiceEnv()
	env.roles.On("FindByName", mock.Anything, "USER").Return(model.Role{ID: 3, Name: model.RoleUser}, nil)

	_, err := env.svc.Create(context.Background(), adminActor, model.CreateUserRequest{
		Username: "newbie", FullName: "New Bie", Password: strings.Repeat("é", 40), Email: "n@example.com", Role: "USER",
	})

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	env.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, model.AuditStatusFailure, env.audit.last().Status)
}
