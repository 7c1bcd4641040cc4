package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("email or username already exists")
)

// MySQL error numbers.
const (
	errDuplicateEntry  = 1062
	errNoReferencedRow = 1452
)

// UserRepository handles user and saved-book persistence in MySQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `INSERT INTO users (id, email, username, password_hash) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Username, user.PasswordHash)
	if err != nil {
		if mysqlErrorNumber(err) == errDuplicateEntry {
			return ErrDuplicateUser
		}
		return err
	}

	return nil
}

// GetByEmail retrieves a user and their saved books by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, email, username, password_hash, created_at, updated_at FROM users WHERE email = ?`
	return r.getUser(ctx, query, email)
}

// GetByID retrieves a user and their saved books by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, email, username, password_hash, created_at, updated_at FROM users WHERE id = ?`
	return r.getUser(ctx, query, id)
}

// PushSavedBook appends a book to the user's saved list in a single INSERT and
// returns the updated user. Existing entries with the same book ID are not checked.
func (r *UserRepository) PushSavedBook(ctx context.Context, userID string, book model.SavedBook) (*model.User, error) {
	authors, err := json.Marshal(book.Authors)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO saved_books (user_id, book_id, title, authors, description, image, link)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		userID,
		book.BookID,
		book.Title,
		authors,
		nullString(book.Description),
		nullString(book.Image),
		nullString(book.Link),
	)
	if err != nil {
		if mysqlErrorNumber(err) == errNoReferencedRow {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return r.GetByID(ctx, userID)
}

// PullSavedBook removes every saved entry with the given book ID in a single
// DELETE and returns the updated user. Removing an absent book is not an error.
func (r *UserRepository) PullSavedBook(ctx context.Context, userID, bookID string) (*model.User, error) {
	query := `DELETE FROM saved_books WHERE user_id = ? AND book_id = ?`

	if _, err := r.db.ExecContext(ctx, query, userID, bookID); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, userID)
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	books, err := r.listSavedBooks(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.SavedBooks = books

	return user, nil
}

func (r *UserRepository) listSavedBooks(ctx context.Context, userID string) ([]model.SavedBook, error) {
	query := `SELECT book_id, title, authors, description, image, link
		FROM saved_books WHERE user_id = ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []model.SavedBook{}
	for rows.Next() {
		var (
			b                        model.SavedBook
			authors                  []byte
			description, image, link sql.NullString
		)
		if err := rows.Scan(&b.BookID, &b.Title, &authors, &description, &image, &link); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(authors, &b.Authors); err != nil {
			return nil, fmt.Errorf("decode authors of book %s: %w", b.BookID, err)
		}
		b.Description = description.String
		b.Image = image.String
		b.Link = link.String
		books = append(books, b)
	}

	return books, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// mysqlErrorNumber returns the server error number of err, or 0 if err is not a MySQL error.
func mysqlErrorNumber(err error) uint16 {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}
	return 0
}
