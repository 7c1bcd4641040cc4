package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/bookshelf/bookshelf-go/internal/repository"
)

var (
	ErrBookIDRequired = errors.New("bookId is required")
	ErrTitleRequired  = errors.New("title is required")
)

// BookService manages the saved-book list of the authenticated user.
// Every operation takes the caller's principal and refuses anonymous callers
// before touching the store.
type BookService struct {
	store UserStore
}

// NewBookService creates a new BookService.
func NewBookService(store UserStore) *BookService {
	return &BookService{store: store}
}

// GetOwnProfile returns the caller's own user record.
func (s *BookService) GetOwnProfile(ctx context.Context, p model.Principal) (model.UserResponse, error) {
	id, ok := p.Identity()
	if !ok {
		return model.UserResponse{}, ErrUnauthenticated
	}

	user, err := s.store.GetByID(ctx, id.UserID)
	if err != nil {
		return model.UserResponse{}, storeError(err)
	}

	return model.NewUserResponse(user), nil
}

// AddBook appends book to the caller's saved list. The same book ID may be
// saved more than once; no existence check is made.
func (s *BookService) AddBook(ctx context.Context, p model.Principal, book model.SavedBook) (model.UserResponse, error) {
	id, ok := p.Identity()
	if !ok {
		return model.UserResponse{}, ErrUnauthenticated
	}

	book.BookID = strings.TrimSpace(book.BookID)
	if book.BookID == "" {
		return model.UserResponse{}, ErrBookIDRequired
	}
	if strings.TrimSpace(book.Title) == "" {
		return model.UserResponse{}, ErrTitleRequired
	}
	book.Normalize()

	user, err := s.store.PushSavedBook(ctx, id.UserID, book)
	if err != nil {
		return model.UserResponse{}, storeError(err)
	}

	return model.NewUserResponse(user), nil
}

// RemoveBook removes every entry with bookID from the caller's saved list.
// Removing a book that is not saved returns the list unchanged.
func (s *BookService) RemoveBook(ctx context.Context, p model.Principal, bookID string) (model.UserResponse, error) {
	id, ok := p.Identity()
	if !ok {
		return model.UserResponse{}, ErrUnauthenticated
	}

	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return model.UserResponse{}, ErrBookIDRequired
	}

	user, err := s.store.PullSavedBook(ctx, id.UserID, bookID)
	if err != nil {
		return model.UserResponse{}, storeError(err)
	}

	return model.NewUserResponse(user), nil
}

// storeError maps a vanished account to ErrUnauthenticated: the token named a user that no longer exists.
func storeError(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUnauthenticated
	}
	return err
}
