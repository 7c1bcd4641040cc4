package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bookshelf/bookshelf-go/internal/client/api"
	"github.com/bookshelf/bookshelf-go/internal/client/config"
	"github.com/bookshelf/bookshelf-go/internal/client/mirror"
	"github.com/bookshelf/bookshelf-go/internal/client/session"
	"github.com/bookshelf/bookshelf-go/internal/client/storage"
	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

var errNotLoggedIn = errors.New("not logged in, run `bookshelf login` first")

// App holds the state shared by every command. It owns the local store and
// the session objects built on it.
type App struct {
	logger *log.Logger
	out    io.Writer

	store   *storage.SQLiteStore
	session *session.Cache
	client  *api.Client
}

// Setup loads configuration and opens local storage before any command runs.
func (a *App) Setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		a.logger.SetLevel(lvl)
	} else {
		a.logger.Warn("unknown log level, using info", "level", cfg.LogLevel)
	}

	store, err := storage.Open(ctx, cfg.StoragePath)
	if err != nil {
		return ctx, err
	}
	a.store = store
	a.session = session.New(store)
	a.client = api.NewClient(cfg.ServerURL, a.session, nil)

	a.logger.Debug("ready", "server", cfg.ServerURL, "storage", cfg.StoragePath)
	return ctx, nil
}

// Teardown closes local storage.
func (a *App) Teardown(ctx context.Context, cmd *cli.Command) error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Signup creates an account and stores the returned token.
func (a *App) Signup(ctx context.Context, cmd *cli.Command) error {
	resp, err := a.client.Signup(ctx, model.CreateUserRequest{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	})
	if err != nil {
		return err
	}
	if err := a.session.Store(ctx, resp.Token); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed up as %s <%s>\n", resp.User.Username, resp.User.Email)
	return nil
}

// Login starts a session for an existing account.
func (a *App) Login(ctx context.Context, cmd *cli.Command) error {
	resp, err := a.client.Login(ctx, model.LoginRequest{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	})
	if err != nil {
		return err
	}
	if err := a.session.Store(ctx, resp.Token); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s (%d saved books)\n", resp.User.Username, resp.User.BookCount)
	return nil
}

// Logout forgets the stored token.
func (a *App) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := a.session.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the identity of a valid session.
func (a *App) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	id, ok, err := a.session.Identity(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", id.Username, id.Email)
	return nil
}

// Search prints catalog results, marking ids the signed-in user has saved.
func (a *App) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("search needs a query")
	}

	books, err := a.client.Search(ctx, query)
	if err != nil {
		// Leave local state untouched; the search can simply be retried.
		a.logger.Error("search failed", "query", query, "error", err)
		return nil
	}

	saved := map[string]struct{}{}
	m, ok, err := a.savedMirror(ctx)
	if err != nil {
		return err
	}
	if ok {
		if saved, err = m.Snapshot(ctx); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.out, "Viewing %d results:\n", len(books))
	for _, b := range books {
		marker := ""
		if _, ok := saved[b.BookID]; ok {
			marker = " [saved]"
		}
		fmt.Fprintf(a.out, "%s  %s by %s%s\n", b.BookID, b.Title, strings.Join(b.Authors, ", "), marker)
	}
	return nil
}

// Save saves one book. Ids already in the local mirror are refused without
// contacting the server; the server itself does not deduplicate.
func (a *App) Save(ctx context.Context, cmd *cli.Command) error {
	m, ok, err := a.savedMirror(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errNotLoggedIn
	}

	book := model.SavedBook{
		BookID:      cmd.String("id"),
		Title:       cmd.String("title"),
		Authors:     cmd.StringSlice("author"),
		Description: cmd.String("description"),
		Image:       cmd.String("image"),
		Link:        cmd.String("link"),
	}

	return m.Run(ctx, func(s *mirror.Session) error {
		if s.Has(book.BookID) {
			fmt.Fprintf(a.out, "%s is already saved\n", book.BookID)
			return nil
		}

		user, err := a.client.SaveBook(ctx, book)
		if err != nil {
			return err
		}
		if err := s.Record(book.BookID); err != nil {
			return err
		}

		fmt.Fprintf(a.out, "Saved %s (%d saved books)\n", book.BookID, user.BookCount)
		return nil
	})
}

// Remove removes a book on the server. The local mirror keeps the id.
func (a *App) Remove(ctx context.Context, cmd *cli.Command) error {
	bookID := cmd.Args().First()
	if bookID == "" {
		return errors.New("remove needs a book id")
	}

	user, err := a.client.RemoveBook(ctx, bookID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Removed %s (%d saved books)\n", bookID, user.BookCount)
	return nil
}

// savedMirror returns the saved-id mirror of the signed-in user. It reports
// false when no valid session exists.
func (a *App) savedMirror(ctx context.Context) (*mirror.Mirror, bool, error) {
	id, ok, err := a.session.Identity(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return mirror.New(a.store, id.UserID), true, nil
}

// Saved lists the saved books held by the server.
func (a *App) Saved(ctx context.Context, cmd *cli.Command) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}

	if len(user.SavedBooks) == 0 {
		fmt.Fprintln(a.out, "You have no saved books!")
		return nil
	}

	fmt.Fprintf(a.out, "Viewing %d saved books:\n", len(user.SavedBooks))
	for _, b := range user.SavedBooks {
		fmt.Fprintf(a.out, "%s  %s by %s\n", b.BookID, b.Title, strings.Join(b.Authors, ", "))
	}
	return nil
}

// Init writes the example configuration file.
func (a *App) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := config.WriteExample(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s\n", path)
	return nil
}
