package model

import (
	"strings"
	"time"
)

const (
	RoleAdmin      = "ADMIN"
	RoleSpecialist = "SPECIALIST"
	RoleUser       = "USER"

	authorityPrefix = "ROLE_"
)

// Roles lists every role seeded at bootstrap.
var Roles = []string{RoleAdmin, RoleSpecialist, RoleUser}

// Authority returns the canonical "ROLE_<NAME>" form of a role name.
// Names that already carry the prefix are only normalized.
func Authority(role string) string {
	name := strings.ToUpper(strings.TrimSpace(role))
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, authorityPrefix) {
		return name
	}
	return authorityPrefix + name
}

// IsAdmin reports whether role, in either form, is the admin role.
func IsAdmin(role string) bool {
	return Authority(role) == Authority(RoleAdmin)
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
	Email        string
	Phone        string
	Avatar       string
	Position     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Claims is the decoded payload of a signed token.
type Claims struct {
	SubjectID int64
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID   int64
	Username string
	FullName string
	Email    string
	Role     string
}

func (i Identity) Authority() string {
	return Authority(i.Role)
}


func (u User) Identity() Identity {
	return Identity{
		UserID:   u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role.Name,
	}
}

type UserResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullname"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar"`
	Position   string    `json:"position"`
	Phone      string    `json:"phone"`
	Majors     []string  `json:"majors"`
	Role       string    `json:"role"`
	CreateDate time.Time `json:"createDate"`
}

func (u User) Response() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Avatar:     u.Avatar,
		Position:   u.Position,
		Phone:      u.Phone,
		Majors:     []string{},
		Role:       u.Role.Name,
		CreateDate: u.CreatedAt,
	}
}

func UserResponses(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Response())
	}
	return out
}

type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// UserFilter drives the paginated user search.
type UserFilter struct {
	Keyword   string
	RoleName  string
	MajorName string
	Page      int
	Limit     int
}
