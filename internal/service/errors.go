package service

import "errors"

// Waitlist errors
var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrDuplicateEmail     = errors.New("email already on waitlist")
	ErrEntryNotFound      = errors.New("user not found on waitlist")
	ErrInvalidStatus      = errors.New("invalid status filter")
	ErrMessageRequired    = errors.New("message is required")
	ErrNotificationFailed = errors.New("failed to send email")
)

// Auth errors
var (
	ErrMissingFields       = errors.New("all fields are required")
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already exists")
	ErrPhoneTaken          = errors.New("phone number already exists")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrUnknownCreator      = errors.New("created_by does not reference an existing user")
	ErrUserNotFound        = errors.New("user not found")
)
