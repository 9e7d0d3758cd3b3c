package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCannotDeleteSelf        = errors.New("you cannot delete your own account")
)
