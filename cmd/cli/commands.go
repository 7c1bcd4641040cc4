package main

import "github.com/urfave/cli/v3"

func (a *App) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "init",
			Usage:  "Write an example configuration file",
			Action: a.Init,
		},
		{
			Name:  "signup",
			Usage: "Create an account and start a session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
			},
			Action: a.Signup,
		},
		{
			Name:  "login",
			Usage: "Start a session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
			},
			Action: a.Login,
		},
		{
			Name:   "logout",
			Usage:  "End the current session",
			Action: a.Logout,
		},
		{
			Name:   "whoami",
			Usage:  "Show the identity of the current session",
			Action: a.WhoAmI,
		},
		{
			Name:      "search",
			Usage:     "Search the book catalog",
			ArgsUsage: "<query>",
			Action:    a.Search,
		},
		{
			Name:  "save",
			Usage: "Save a book to your list",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Usage: "Catalog book id", Required: true},
				&cli.StringFlag{Name: "title", Usage: "Book title", Required: true},
				&cli.StringSliceFlag{Name: "author", Usage: "Author (repeatable)"},
				&cli.StringFlag{Name: "description", Usage: "Book description"},
				&cli.StringFlag{Name: "image", Usage: "Cover image URL"},
				&cli.StringFlag{Name: "link", Usage: "Catalog page URL"},
			},
			Action: a.Save,
		},
		{
			Name:      "remove",
			Usage:     "Remove a book from your list",
			ArgsUsage: "<book-id>",
			Action:    a.Remove,
		},
		{
			Name:   "saved",
			Usage:  "List your saved books",
			Action: a.Saved,
		},
	}
}
