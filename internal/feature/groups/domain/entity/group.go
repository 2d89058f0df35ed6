package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinGroupNameLength and MaxGroupNameLength bound a group name, counted in characters.
	MinGroupNameLength = 2
	MaxGroupNameLength = 100
)

var (
	// ErrInvalidGroupName is returned when a name is blank or outside the allowed length.
	ErrInvalidGroupName = errors.New("invalid group name")

	// ErrUnsavedUser is returned when an unsaved user would enter a member set.
	ErrUnsavedUser = errors.New("user has no identity")
)

// Group is a named set of members with a fixed creator.
//
// The member set is owned by the group and keyed by user id. Users never carry
// a mirrored list of their groups; that direction is answered by a query.
type Group struct {
	// ID is assigned by storage. Zero means the group has not been saved.
	ID   uint
	Name string

	// Creator is set by NewGroup and never reassigned.
	Creator User

	// Version is the optimistic concurrency counter maintained by storage.
	Version uint

	CreatedAt time.Time
	UpdatedAt time.Time

	members map[uint]User
}

// ValidateGroupName trims name and checks it against the name constraint.
// It returns the trimmed name.
func ValidateGroupName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: group name cannot be empty", ErrInvalidGroupName)
	}
	if n := utf8.RuneCountInString(trimmed); n < MinGroupNameLength || n > MaxGroupNameLength {
		return "", fmt.Errorf("%w: group name must be between %d and %d characters",
			ErrInvalidGroupName, MinGroupNameLength, MaxGroupNameLength)
	}
	return trimmed, nil
}

// NewGroup builds an unsaved group whose member set is exactly {creator}.
func NewGroup(name string, creator User) (*Group, error) {
	validName, err := ValidateGroupName(name)
	if err != nil {
		return nil, err
	}
	if !creator.Stored() {
		return nil, fmt.Errorf("%w: creator", ErrUnsavedUser)
	}
	return &Group{
		Name:    validName,
		Creator: creator,
		members: map[uint]User{creator.ID: creator},
	}, nil
}

// Restore rebuilds a stored group from its persisted parts.
func Restore(id uint, name string, creator User, members []User, version uint, createdAt, updatedAt time.Time) *Group {
	g := &Group{
		ID:        id,
		Name:      name,
		Creator:   creator,
		Version:   version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		members:   make(map[uint]User, len(members)),
	}
	for _, m := range members {
		if m.Stored() {
			g.members[m.ID] = m
		}
	}
	return g
}

// Rename replaces the group name after validating it.
func (g *Group) Rename(name string) error {
	validName, err := ValidateGroupName(name)
	if err != nil {
		return err
	}
	g.Name = validName
	return nil
}

// IsCreator reports whether userID created the group.
func (g *Group) IsCreator(userID uint) bool {
	return userID != 0 && g.Creator.ID == userID
}

// HasMember reports whether userID is in the member set.
func (g *Group) HasMember(userID uint) bool {
	_, ok := g.members[userID]
	return ok
}

// AddMember inserts u into the member set. It returns false if u was already
// present or has no identity.
func (g *Group) AddMember(u User) bool {
	if !u.Stored() || g.HasMember(u.ID) {
		return false
	}
	if g.members == nil {
		g.members = make(map[uint]User)
	}
	g.members[u.ID] = u
	return true
}

// RemoveMember deletes userID from the member set. It returns false if the user
// was not a member.
func (g *Group) RemoveMember(userID uint) bool {
	if !g.HasMember(userID) {
		return false
	}
	delete(g.members, userID)
	return true
}

// MemberCount returns the size of the member set.
func (g *Group) MemberCount() int {
	return len(g.members)
}

// Members returns a copy of the member set ordered by user id.
func (g *Group) Members() []User {
	out := make([]User, 0, len(g.members))
	for _, m := range g.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MemberIDs returns the member ids in ascending order.
func (g *Group) MemberIDs() []uint {
	ids := make([]uint, 0, len(g.members))
	for id := range g.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy of g.
func (g *Group) Clone() *Group {
	return Restore(g.ID, g.Name, g.Creator, g.Members(), g.Version, g.CreatedAt, g.UpdatedAt)
}

// SameAs reports whether g and other are the same stored group.
func (g *Group) SameAs(other *Group) bool {
	if g == nil || other == nil {
		return false
	}
	return g.ID != 0 && g.ID == other.ID
}

// String omits the member list.
func (g *Group) String() string {
	return fmt.Sprintf("Group{id=%d, name=%q, createdByUserId=%d, memberCount=%d, version=%d}",
		g.ID, g.Name, g.Creator.ID, len(g.members), g.Version)
}

type groupJSON struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Creator   User      `json:"creator"`
	Members   []User    `json:"members"`
	Version   uint      `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON encodes the group including its member set.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupJSON{
		ID:        g.ID,
		Name:      g.Name,
		Creator:   g.Creator,
		Members:   g.Members(),
		Version:   g.Version,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	})
}

// UnmarshalJSON decodes a group produced by MarshalJSON.
func (g *Group) UnmarshalJSON(data []byte) error {
	var v groupJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*g = *Restore(v.ID, v.Name, v.Creator, v.Members, v.Version, v.CreatedAt, v.UpdatedAt)
	return nil
}
