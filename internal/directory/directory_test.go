package directory

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

type fakeUsers struct {
	users map[string]*models.User
	calls int
	err   error
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{
		"u1": {ID: "u1", DisplayName: "Ada Lovelace"},
		"u2": {ID: "u2", DisplayName: "grace"},
	}}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ada Lovelace", "AL"},
		{"grace", "G"},
		{"Jean Luc Picard", "JL"},
		{"  spaced   out  ", "SO"},
		{"", ""},
		{"élodie durand", "ÉD"},
		{"3f2a-uuid-looking-id", "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Initials(tt.name), "Initials(%q)", tt.name)
	}
}

func TestColorForIsStable(t *testing.T) {
	assert.Equal(t, ColorFor("u1"), ColorFor("u1"))
	assert.Contains(t, palette, ColorFor("anything"))
}

func TestStoreDirectory(t *testing.T) {
	d := NewStoreDirectory(newFakeUsers())

	got, err := d.Resolve(context.Background(), []string{"u1", "ghost", "u1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada Lovelace", got["u1"].DisplayName)
	assert.Equal(t, "AL", got["u1"].Initials)
	assert.Equal(t, "ghost", got["ghost"].DisplayName)
}

func TestCachedDirectory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	users := newFakeUsers()
	d := NewCachedDirectory(NewStoreDirectory(users), client, time.Minute, nil)
	ctx := context.Background()

	got, err := d.Resolve(ctx, []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, "grace", got["u2"].DisplayName)
	assert.Equal(t, 1, users.calls)
	assert.True(t, mr.Exists(keyPrefix+"u1"))

	// served from cache
	got, err = d.Resolve(ctx, []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got["u1"].DisplayName)
	assert.Equal(t, 1, users.calls)

	// partial miss only looks up the missing ID
	_, err = d.Resolve(ctx, []string{"u1", "u3"})
	require.NoError(t, err)
	assert.Equal(t, 2, users.calls)

	// entries expire
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(keyPrefix+"u1"))

	require.NoError(t, d.Invalidate(ctx, "u3"))
	assert.False(t, mr.Exists(keyPrefix+"u3"))
}

func TestCachedDirectoryFallsThroughWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { client.Close() })

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	d := NewCachedDirectory(NewStoreDirectory(newFakeUsers()), client, time.Minute, logger)
	got, err := d.Resolve(context.Background(), []string{"u1"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got["u1"].DisplayName)
	assert.Contains(t, logs.String(), "Profile cache read failed")
	assert.Contains(t, logs.String(), "Profile cache write failed")
}

func TestCachedDirectoryPropagatesStoreErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	users := &fakeUsers{err: errors.New("db down")}
	d := NewCachedDirectory(NewStoreDirectory(users), client, time.Minute, nil)
	_, err := d.Resolve(context.Background(), []string{"u1"})
	assert.Error(t, err)
}
