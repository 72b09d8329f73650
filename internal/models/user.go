package models

import "regexp"

// phonePattern is the only accepted phone shape, e.g. "0612-345678".
var phonePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{6}$`)

// User represents a person who can pay expenses and join groups.
// Users are never modified or deleted once registered.
type User struct {
	// Name is the display name of the user. It must not contain digits.
	Name string `json:"name"`

	// Phone is the unique identifier of the user ("dddd-dddddd").
	Phone string `json:"phone"`
}

// ValidPhone reports whether phone has the "dddd-dddddd" shape.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// UserRef points at a user by phone.
type UserRef struct {
	Phone string `json:"phone"`

	// Link is a presentation hint carried over from stored documents.
	// The ledger keeps it as-is and never generates one.
	Link string `json:"link,omitempty"`
}
