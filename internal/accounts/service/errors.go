package service

import "errors"

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidToken = errors.New("invalid_token")
	ErrUnauthorized = errors.New("unauthorized")
)
