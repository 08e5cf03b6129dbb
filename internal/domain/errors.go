package domain

import "errors"

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrEndpointNotFound = errors.New("endpoint not found")
)
