package auth

import "errors"

var (
	// ErrUnauthenticated is returned when no valid session accompanies a request.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoTargetUnit is returned when a scoped permission check cannot
	// resolve the target unit from the request.
	ErrNoTargetUnit = errors.New("no target unit in request")

	// ErrForbidden is returned when the session user lacks the required
	// permission for the target unit.
	ErrForbidden = errors.New("forbidden")
)
