package domain

import "errors"

var (
	// ErrModuleNotFound is returned for a zero-row single-module lookup. It is
	// distinct from transport errors so callers can render a not-found state.
	ErrModuleNotFound = errors.New("module not found")
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates a sign-up collision on the email column.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoQuiz indicates a module has zero quiz questions.
	ErrNoQuiz = errors.New("no quiz available for module")
	// ErrNoSelection is returned by Advance before an option was selected.
	ErrNoSelection = errors.New("no option selected")
	// ErrInvalidOption indicates an option index outside the question's options.
	ErrInvalidOption = errors.New("option index out of range")
	// ErrQuizCompleted is returned for transitions on a finished quiz session.
	ErrQuizCompleted = errors.New("quiz already completed")
	// ErrStoreClosed is returned when a progress store is used after Close.
	ErrStoreClosed = errors.New("progress store closed")
)
