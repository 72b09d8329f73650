package models

// MaxGroupNameLength is the longest group name accepted, in characters.
const MaxGroupNameLength = 70

// Group represents a named set of users who share expenses.
// A group starts empty and only ever grows through membership additions.
type Group struct {
	// ID is the sequential identifier of the group, starting at 1.
	ID int64 `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Ski trip").
	Name string `json:"name"`

	// Members lists the users in the group in the order they joined.
	// Each phone appears at most once. Persisted as "users".
	Members []UserRef `json:"users"`
}

// HasMember reports whether phone is one of the group's members.
func (g Group) HasMember(phone string) bool {
	for _, m := range g.Members {
		if m.Phone == phone {
			return true
		}
	}
	return false
}

// GroupRef points at a group by ID.
type GroupRef struct {
	ID int64 `json:"id"`

	// Link is a presentation hint carried over from stored documents.
	Link string `json:"link,omitempty"`
}

// GroupBook is the persisted form of the groups collection.
type GroupBook struct {
	// CurrentID is the last group ID handed out (0 when no group exists yet).
	CurrentID int64 `json:"current_id"`

	// Groups holds every group in creation order.
	Groups []Group `json:"groups"`
}

// Find returns the index of the group with the given ID, or -1.
func (b GroupBook) Find(id int64) int {
	for i, g := range b.Groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}
