package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-survey-admin/internal/model"
)

type mockDecoder struct {
	mock.Mock
}

func (m *mockDecoder) Decode(token string) (*model.Claims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*model.Claims)
	return claims, args.Error(1)
}

type mockIdentities struct {
	mock.Mock
}

func (m *mockIdentities) LoadIdentity(ctx context.Context, username string) (model.Identity, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.Identity), args.Error(1)
}

// captureIdentity records what the downstream handler saw.
func captureIdentity(seen *model.Identity, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen, *found = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	admin := model.Identity{UserID: 1, Username: "admin", Role: model.RoleAdmin}

	tests := []struct {
		name         string
		header       string
		setup        func(d *mockDecoder, i *mockIdentities)
		wantIdentity bool
	}{
		{
			name:   "no header passes through",
			header: "",
		},
		{
			name:   "non bearer scheme ignored",
			header: "Basic YWRtaW46MTIzNA==",
		},
		{
			name:   "valid token attaches identity",
			header: "Bearer good",
			setup: func(d *mockDecoder, i *mockIdentities) {
				d.On("Decode", "good").Return(&model.Claims{SubjectID: 1, Username: "admin"}, nil)
				i.On("LoadIdentity", mock.Anything, "admin").Return(admin, nil)
			},
			wantIdentity: true,
		},
		{
			name:   "lowercase scheme accepted",
			header: "bearer good",
			setup: func(d *mockDecoder, i *mockIdentities) {
				d.On("Decode", "good").Return(&model.Claims{SubjectID: 1, Username: "admin"}, nil)
				i.On("LoadIdentity", mock.Anything, "admin").Return(admin, nil)
			},
			wantIdentity: true,
		},
		{
			name:   "bad token fails open",
			header: "Bearer tampered",
			setup: func(d *mockDecoder, _ *mockIdentities) {
				d.On("Decode", "tampered").Return(nil, model.ErrInvalidToken)
			},
		},
		{
			name:   "deleted user fails open",
			header: "Bearer orphan",
			setup: func(d *mockDecoder, i *mockIdentities) {
				d.On("Decode", "orphan").Return(&model.Claims{SubjectID: 9, Username: "gone"}, nil)
				i.On("LoadIdentity", mock.Anything, "gone").Return(model.Identity{}, model.ErrUserNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder := new(mockDecoder)
			identities := new(mockIdentities)
			if tt.setup != nil {
				tt.setup(decoder, identities)
			}
			mw := NewAuthMiddleware(decoder, identities, nil)

			var seen model.Identity
			var found bool
			req := httptest.NewRequest(http.MethodGet, "/survey/find-all", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw.Authenticate(captureIdentity(&seen, &found)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.wantIdentity, found)
			if tt.wantIdentity {
				assert.Equal(t, admin, seen)
			}
			decoder.AssertExpectations(t)
			identities.AssertExpectations(t)
		})
	}
}

func TestAuthenticate_UsesRejectReason(t *testing.T) {
	decoder := new(mockDecoder)
	decoder.On("Decode", "old").Return(nil, errors.New("expired"))

	var got error
	mw := NewAuthMiddleware(decoder, new(mockIdentities), func(err error) string {
		got = err
		return "expired"
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer old")
	mw.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(httptest.NewRecorder(), req)

	require.Error(t, got)
	assert.Equal(t, "expired", got.Error())
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name       string
		identity   *model.Identity
		roles      []string
		wantStatus int
		wantCalled bool
	}{
		{name: "no identity", roles: []string{model.RoleAdmin}, wantStatus: http.StatusUnauthorized},
		{
			name:       "role mismatch",
			identity:   &model.Identity{UserID: 2, Role: model.RoleSpecialist},
			roles:      []string{model.RoleAdmin},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "role allowed",
			identity:   &model.Identity{UserID: 2, Role: model.RoleSpecialist},
			roles:      []string{model.RoleAdmin, model.RoleSpecialist},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "authority form accepted",
			identity:   &model.Identity{UserID: 1, Role: "admin"},
			roles:      []string{"ROLE_ADMIN"},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewAuthMiddleware(new(mockDecoder), new(mockIdentities), nil)

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodDelete, "/users/delete/5", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tt.identity))
			}
			rec := httptest.NewRecorder()

			mw.RequireRoles(tt.roles...)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if !tt.wantCalled {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("  Bearer   abc.def ")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)

	_, ok = bearerToken("Token abc")
	assert.False(t, ok)
}

func TestLogging_SetsRequestID(t *testing.T) {
	var seen string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
