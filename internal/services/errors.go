package services

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrMissingEmail = errors.New("identity provider returned no email")
	ErrEmptyName    = errors.New("name is empty after sanitizing")
)
