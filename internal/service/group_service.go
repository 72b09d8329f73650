package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
)

// GroupService creates groups and answers membership questions.
type GroupService struct {
	state *state
}

// List returns every group in creation order.
func (s *GroupService) List(ctx context.Context) (groups []models.Group, err error) {
	defer func() { finish(ctx, "ListGroups", err) }()

	book, err := s.state.groups.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return book.Groups, nil
}

// Get retrieves a group by ID.
func (s *GroupService) Get(ctx context.Context, id int64) (group models.Group, err error) {
	defer func() { finish(ctx, "GetGroup", err, "group_id", id) }()

	g, ok, err := s.state.findGroup(ctx, id)
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to get group: %w", err)
	}
	if !ok {
		return models.Group{}, fmt.Errorf("group %d: %w", id, ErrNotFound)
	}
	return g, nil
}

// Create creates an empty group. The new ID and the group are persisted in
// the same write.
func (s *GroupService) Create(ctx context.Context, name string) (group models.Group, err error) {
	name = normalizeName(name)
	slog.InfoContext(ctx, "CreateGroup request received", "name", name)
	defer func() { finish(ctx, "CreateGroup", err, "name", name) }()

	if name == "" {
		return models.Group{}, fmt.Errorf("%w: group name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > models.MaxGroupNameLength {
		return models.Group{}, fmt.Errorf("%w: group name longer than %d characters", ErrValidation, models.MaxGroupNameLength)
	}

	err = s.state.groups.Update(ctx, func(book *models.GroupBook) error {
		group = models.Group{
			ID:      nextID(maxGroupID(*book)),
			Name:    name,
			Members: []models.UserRef{},
		}
		book.CurrentID = group.ID
		book.Groups = append(book.Groups, group)
		return nil
	})
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to create group: %w", err)
	}

	slog.InfoContext(ctx, "Group created", "group_id", group.ID)

	e := events.New(events.GroupCreated)
	e.GroupID = group.ID
	s.state.publish(ctx, e)

	return group, nil
}

// AddMember appends the user with phone to the group's members.
func (s *GroupService) AddMember(ctx context.Context, groupID int64, phone string) (err error) {
	slog.InfoContext(ctx, "AddMember request received", "group_id", groupID, "phone", phone)
	defer func() { finish(ctx, "AddMember", err, "group_id", groupID, "phone", phone) }()

	_, ok, err := s.state.findUser(ctx, phone)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if !ok {
		return fmt.Errorf("user %s: %w", phone, ErrUnknownUser)
	}

	err = s.state.groups.Update(ctx, func(book *models.GroupBook) error {
		i := book.Find(groupID)
		if i < 0 {
			return fmt.Errorf("group %d: %w", groupID, ErrUnknownGroup)
		}
		g := &book.Groups[i]
		if g.HasMember(phone) {
			return fmt.Errorf("user %s in group %d: %w", phone, groupID, ErrAlreadyMember)
		}
		g.Members = append(g.Members, models.UserRef{Phone: phone})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	slog.InfoContext(ctx, "Member added", "group_id", groupID, "phone", phone)

	e := events.New(events.GroupMemberAdded)
	e.GroupID = groupID
	e.Phone = phone
	s.state.publish(ctx, e)

	return nil
}

// UsersInGroup returns the group's members in the order they joined.
func (s *GroupService) UsersInGroup(ctx context.Context, groupID int64) (users []models.User, err error) {
	defer func() { finish(ctx, "UsersInGroup", err, "group_id", groupID) }()
	return s.usersInGroup(ctx, groupID)
}

func (s *GroupService) usersInGroup(ctx context.Context, groupID int64) ([]models.User, error) {
	g, ok, err := s.state.findGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("group %d: %w", groupID, ErrUnknownGroup)
	}

	all, err := s.state.users.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	byPhone := make(map[string]models.User, len(all))
	for _, u := range all {
		byPhone[u.Phone] = u
	}

	users := make([]models.User, 0, len(g.Members))
	for _, m := range g.Members {
		u, ok := byPhone[m.Phone]
		if !ok {
			return nil, fmt.Errorf("member %s of group %d: %w", m.Phone, groupID, ErrDanglingReference)
		}
		users = append(users, u)
	}
	return users, nil
}

// UsersNotInGroup returns every registered user who is not a member of the
// group, in registration order.
func (s *GroupService) UsersNotInGroup(ctx context.Context, groupID int64) (users []models.User, err error) {
	defer func() { finish(ctx, "UsersNotInGroup", err, "group_id", groupID) }()

	g, ok, err := s.state.findGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get non-members: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("group %d: %w", groupID, ErrUnknownGroup)
	}

	all, err := s.state.users.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get non-members: %w", err)
	}

	users = []models.User{}
	for _, u := range all {
		if !g.HasMember(u.Phone) {
			users = append(users, u)
		}
	}
	return users, nil
}

// GroupsForUser returns the groups phone is a member of, in creation order.
// An unknown phone belongs to no group.
func (s *GroupService) GroupsForUser(ctx context.Context, phone string) (groups []models.Group, err error) {
	defer func() { finish(ctx, "GroupsForUser", err, "phone", phone) }()

	book, err := s.state.groups.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups for user: %w", err)
	}

	groups = []models.Group{}
	for _, g := range book.Groups {
		if g.HasMember(phone) {
			groups = append(groups, g)
		}
	}
	return groups, nil
}
