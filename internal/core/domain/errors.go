package domain

import "errors"

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrConflict           = errors.New("already exists")
	ErrNotFound           = errors.New("user not found")
)
