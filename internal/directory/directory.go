// Package directory resolves participant IDs to display metadata.
package directory

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mmynk/splitledger/internal/models"
)

// Profile is what a client needs to render a participant.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Initials    string `json:"initials"`
	Color       string `json:"color"`
}

// Directory maps participant IDs to profiles. Every requested ID is present
// in the result, even when the user is unknown.
type Directory interface {
	Resolve(ctx context.Context, ids []string) (map[string]Profile, error)
}

// UserLookup is the subset of storage.UserStore the directory reads.
type UserLookup interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// StoreDirectory resolves profiles from the user table.
type StoreDirectory struct {
	users UserLookup
}

// NewStoreDirectory creates a directory backed by users.
func NewStoreDirectory(users UserLookup) *StoreDirectory {
	return &StoreDirectory{users: users}
}

// Resolve looks the IDs up in one query. Unknown IDs get a profile named after the ID.
func (d *StoreDirectory) Resolve(ctx context.Context, ids []string) (map[string]Profile, error) {
	ids = dedupe(ids)
	users, err := d.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Profile, len(ids))
	for _, id := range ids {
		name := id
		if u, ok := users[id]; ok && u.DisplayName != "" {
			name = u.DisplayName
		}
		out[id] = NewProfile(id, name)
	}
	return out, nil
}

var palette = []string{
	"rose", "orange", "amber", "emerald", "teal",
	"cyan", "blue", "indigo", "violet", "purple",
}

// NewProfile derives initials and a stable avatar color for a participant.
func NewProfile(id, displayName string) Profile {
	return Profile{
		ID:          id,
		DisplayName: displayName,
		Initials:    Initials(displayName),
		Color:       ColorFor(id),
	}
}

// Initials returns up to two upper-case letters from the first words of name.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	return b.String()
}

// ColorFor picks a palette entry from a hash of id so the same participant
// always gets the same color.
func ColorFor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return palette[h.Sum32()%uint32(len(palette))]
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
