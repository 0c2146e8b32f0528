package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCannotDeleteSelf   = errors.New("cannot delete own account")

	// Role related errors
	ErrRoleNotFound = errors.New("role not found")

	// Token related errors. Every decode failure wraps ErrInvalidToken.
	ErrInvalidToken = errors.New("invalid token")

	// Survey related errors
	ErrSurveyNotFound = errors.New("survey not found")

	// Program related errors
	ErrProgramNotFound   = errors.New("program not found")
	ErrProgramFull       = errors.New("program is full")
	ErrProgramClosed     = errors.New("program is not open for registration")
	ErrAlreadyRegistered = errors.New("already registered for program")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
