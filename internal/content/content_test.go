package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goGate/session"
)

var author = session.User{ID: 2, Email: "user@example.com", Name: "Regular User", Role: "user"}

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestCreateListGet(t *testing.T) {
	ctx := context.Background()
	s := New(session.NewMemoryStore(), WithClock(fixedClock()))

	item, err := s.Create(ctx, author, Draft{Title: " Hello ", Content: "body", Tags: ParseTags("go, ,rbac")})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Hello", item.Title)
	assert.Equal(t, "general", item.Category)
	assert.Equal(t, []string{"go", "rbac"}, item.Tags)
	assert.Equal(t, "Regular User", item.Author)
	assert.Equal(t, int64(2), item.AuthorID)
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)

	got, err := s.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCreateValidates(t *testing.T) {
	s := New(session.NewMemoryStore())

	_, err := s.Create(context.Background(), author, Draft{Content: "x"})
	assert.ErrorIs(t, err, ErrInvalidDraft)

	_, err = s.Create(context.Background(), author, Draft{Title: "x", Content: "  "})
	assert.ErrorIs(t, err, ErrInvalidDraft)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New(session.NewMemoryStore(), WithClock(fixedClock()))

	first, err := s.Create(ctx, author, Draft{Title: "a", Content: "1"})
	require.NoError(t, err)
	second, err := s.Create(ctx, author, Draft{Title: "b", Content: "2"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, first.ID, Draft{Title: "a2", Content: "1b", Category: "news", IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, "a2", updated.Title)
	assert.Equal(t, "news", updated.Category)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)

	require.NoError(t, s.Delete(ctx, first.ID))
	_, err = s.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, first.ID), ErrNotFound)
	_, err = s.Update(ctx, first.ID, Draft{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, second.ID, items[0].ID)
}

func TestRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New(session.NewMemoryStore(), WithClock(fixedClock()))

	for _, title := range []string{"one", "two", "three"} {
		_, err := s.Create(ctx, author, Draft{Title: title, Content: "c"})
		require.NoError(t, err)
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "three", recent[0].Title)
	assert.Equal(t, "two", recent[1].Title)
}

func TestSharedKeyAndCorruption(t *testing.T) {
	ctx := context.Background()
	kv := session.NewMemoryStore()

	_, err := New(kv, WithKey("items")).Create(ctx, author, Draft{Title: "t", Content: "c"})
	require.NoError(t, err)

	items, err := New(kv, WithKey("items")).List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	empty, err := New(kv).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, kv.Set(ctx, DefaultKey, "{not a list"))
	_, err = New(kv).List(ctx)
	assert.True(t, errors.Is(err, ErrCorrupt))
}
