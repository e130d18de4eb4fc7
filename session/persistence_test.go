package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*MemoryStore
	failSet    bool
	failRemove bool
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errors.Join(ErrStoreUnavailable, errors.New("quota exceeded"))
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *failingStore) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return ErrStoreUnavailable
	}
	return f.MemoryStore.Remove(ctx, key)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			p := NewPersistence(store, Keys{})
			assert.Equal(t, DefaultKeys(), p.Keys())

			rec, err := p.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, rec)

			want := Record{Token: "mock-token-1", User: sampleUser()}
			require.NoError(t, p.Save(ctx, want))

			got, err := p.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, want, *got)

			require.NoError(t, p.Clear(ctx))
			require.NoError(t, p.Clear(ctx))
			rec, err = p.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestPersistenceIncompleteRecordIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPersistence(store, DefaultKeys())

	require.NoError(t, store.Set(ctx, DefaultUserKey, `{"id":1,"email":"a@b.c","name":"A","role":"user"}`))
	rec, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Remove(ctx, DefaultUserKey))
	require.NoError(t, store.Set(ctx, DefaultTokenKey, "tok"))
	rec, err = p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestPersistenceMalformedUserData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPersistence(store, DefaultKeys())

	require.NoError(t, store.Set(ctx, DefaultTokenKey, "tok"))
	require.NoError(t, store.Set(ctx, DefaultUserKey, "{garbage"))

	_, err := p.Load(ctx)
	require.ErrorIs(t, err, ErrMalformedUserData)
}

func TestPersistenceCustomKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPersistence(store, Keys{Token: "tok", User: "usr"})

	require.NoError(t, p.Save(ctx, Record{Token: "t", User: sampleUser()}))
	_, ok, _ := store.Get(ctx, "usr")
	assert.True(t, ok)
	_, ok, _ = store.Get(ctx, DefaultUserKey)
	assert.False(t, ok)
}

func TestPersistenceWriteFailures(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: NewMemoryStore(), failSet: true, failRemove: true}
	p := NewPersistence(store, DefaultKeys())

	require.ErrorIs(t, p.Save(ctx, Record{Token: "t", User: sampleUser()}), ErrStoreUnavailable)
	require.ErrorIs(t, p.Clear(ctx), ErrStoreUnavailable)
}
