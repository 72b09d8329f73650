package service

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/storage"
)

var (
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownUser indicates a phone that refers to no registered user.
	ErrUnknownUser = fmt.Errorf("%w: unknown user", ErrValidation)

	// ErrUnknownGroup indicates a group ID that refers to no group.
	ErrUnknownGroup = fmt.Errorf("%w: unknown group", ErrValidation)

	// ErrPhoneTaken indicates a user with the same phone is already registered.
	ErrPhoneTaken = fmt.Errorf("%w: phone already registered", ErrValidation)

	// ErrAlreadyMember indicates the user is already in the group.
	ErrAlreadyMember = errors.New("already a member")

	// ErrDanglingReference indicates stored data points at a record that does not exist.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrDivisionUndefined indicates balances were requested for a group without members.
	ErrDivisionUndefined = errors.New("division undefined: group has no members")

	// ErrStorageUnavailable indicates the storage medium failed.
	ErrStorageUnavailable = storage.ErrUnavailable

	// ErrCorruptData indicates stored data could not be parsed.
	ErrCorruptData = storage.ErrCorrupt
)

// errorKind classifies err for metrics. Order matters: the specific
// validation errors wrap ErrValidation.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrUnknownGroup):
		return "unknown_group"
	case errors.Is(err, ErrPhoneTaken):
		return "phone_taken"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, ErrDanglingReference):
		return "dangling_reference"
	case errors.Is(err, ErrDivisionUndefined):
		return "division_undefined"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, ErrCorruptData):
		return "corrupt_data"
	default:
		return "internal"
	}
}
