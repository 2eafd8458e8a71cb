// Package repository implements MySQL persistence for the ledger and
// the account registry.  Sentinel errors defined here let handlers
// distinguish failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrUsernameExists is returned when registering an account whose
// username is already taken.  Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrAccountNotFound is returned when no account matches the given
// username.  Handlers translate this into HTTP 401 on login.
var ErrAccountNotFound = errors.New("account not found")
