package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryUser(t *testing.T, r *MemoryUserRepository) *model.User {
	t.Helper()
	u := &model.User{Email: "ana@x.com", Username: "ana", PasswordHash: "hash"}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestMemoryUserRepository_Create(t *testing.T) {
	r := NewMemoryUserRepository()
	u := newMemoryUser(t, r)

	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	err := r.Create(context.Background(), &model.User{Email: "ana@x.com", Username: "other"})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	err = r.Create(context.Background(), &model.User{Email: "other@x.com", Username: "ana"})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	_, err = r.GetByEmail(context.Background(), "other@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound, "rejected users are not stored")
}

func TestMemoryUserRepository_Lookup(t *testing.T) {
	r := NewMemoryUserRepository()
	u := newMemoryUser(t, r)
	ctx := context.Background()

	byEmail, err := r.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", byID.Username)

	_, err = r.GetByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryUserRepository_PushPull(t *testing.T) {
	r := NewMemoryUserRepository()
	u := newMemoryUser(t, r)
	ctx := context.Background()

	b1 := model.SavedBook{BookID: "B1", Title: "T1", Authors: []string{"A"}}
	b2 := model.SavedBook{BookID: "B2", Title: "T2", Authors: []string{"B"}}

	_, err := r.PushSavedBook(ctx, u.ID, b1)
	require.NoError(t, err)
	_, err = r.PushSavedBook(ctx, u.ID, b2)
	require.NoError(t, err)
	updated, err := r.PushSavedBook(ctx, u.ID, b1)
	require.NoError(t, err)

	require.Len(t, updated.SavedBooks, 3, "duplicates are appended, not merged")
	assert.Equal(t, []string{"B1", "B2", "B1"}, bookIDs(updated.SavedBooks))

	updated, err = r.PullSavedBook(ctx, u.ID, "B1")
	require.NoError(t, err)
	assert.Equal(t, []string{"B2"}, bookIDs(updated.SavedBooks))

	unchanged, err := r.PullSavedBook(ctx, u.ID, "nope")
	require.NoError(t, err)
	assert.Equal(t, updated.SavedBooks, unchanged.SavedBooks)

	_, err = r.PushSavedBook(ctx, "missing", b1)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = r.PullSavedBook(ctx, "missing", "B1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryUserRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryUserRepository()
	u := newMemoryUser(t, r)
	ctx := context.Background()

	got, err := r.PushSavedBook(ctx, u.ID, model.SavedBook{BookID: "B1", Title: "T", Authors: []string{"A"}})
	require.NoError(t, err)
	got.SavedBooks[0].Authors[0] = "changed"
	got.Email = "changed@x.com"

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.SavedBooks[0].Authors[0])
	assert.Equal(t, "ana@x.com", again.Email)
}

func TestMemoryUserRepository_ConcurrentPushes(t *testing.T) {
	r := NewMemoryUserRepository()
	u := newMemoryUser(t, r)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.PushSavedBook(ctx, u.ID, model.SavedBook{BookID: "B1", Title: "T", Authors: []string{"A"}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, got.SavedBooks, 50)
}

func bookIDs(books []model.SavedBook) []string {
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.BookID
	}
	return ids
}
