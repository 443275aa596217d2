package application

import (
	"errors"
	"fmt"
)

// ErrUserAlreadyExists matches any *UserAlreadyExistsError via errors.Is.
var ErrUserAlreadyExists = errors.New("user already exists")

// UserAlreadyExistsError is returned when the email is already registered.
type UserAlreadyExistsError struct {
	Email string
}

func (e *UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with email %q already exists", e.Email)
}

func (e *UserAlreadyExistsError) Is(target error) bool {
	return target == ErrUserAlreadyExists
}
