// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameAlreadyExists indicates that the username is taken.
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrEmailAlreadyExists indicates that the email is taken.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrWrongPassword indicates that the given password is invalid.
	ErrWrongPassword = errors.New("wrong password")
)

// User holds participant credentials and profile data.
type User struct {
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateUserParams is the input data to register a user.
type CreateUserParams struct {
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
}

// UserWithoutPassword is the user representation safe to return to callers.
type UserWithoutPassword struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterTxResult is the result of the registration transaction.
type RegisterTxResult struct {
	User    User    `json:"user"`
	Account Account `json:"account"`
}
