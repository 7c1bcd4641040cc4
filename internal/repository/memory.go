package repository

import (
	"context"
	"sync"
	"time"

	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/google/uuid"
)

// MemoryUserRepository keeps users in process memory. Each method holds the
// lock for its whole mutation, so a push or pull on one user is atomic.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
	now   func() time.Time
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*model.User),
		now:   time.Now,
	}
}

// Create stores a new user, assigning an ID and timestamps. Email and username
// must both be unused.
func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return ErrDuplicateUser
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := cloneUser(user)
	r.users[user.ID] = stored
	return nil
}

// GetByEmail returns a copy of the user with the given email.
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByID returns a copy of the user with the given ID.
func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

// PushSavedBook appends book to the user's saved list and returns the updated user.
// Existing entries with the same book ID are kept.
func (r *MemoryUserRepository) PushSavedBook(ctx context.Context, userID string, book model.SavedBook) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	book.Authors = append([]string(nil), book.Authors...)
	u.SavedBooks = append(u.SavedBooks, book)
	u.UpdatedAt = r.now().UTC()
	return cloneUser(u), nil
}

// PullSavedBook removes every entry with bookID and returns the updated user.
func (r *MemoryUserRepository) PullSavedBook(ctx context.Context, userID, bookID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	kept := u.SavedBooks[:0]
	for _, b := range u.SavedBooks {
		if b.BookID != bookID {
			kept = append(kept, b)
		}
	}
	if len(kept) != len(u.SavedBooks) {
		u.UpdatedAt = r.now().UTC()
	}
	u.SavedBooks = kept
	return cloneUser(u), nil
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.SavedBooks = make([]model.SavedBook, len(u.SavedBooks))
	for i, b := range u.SavedBooks {
		b.Authors = append([]string(nil), b.Authors...)
		c.SavedBooks[i] = b
	}
	return &c
}
