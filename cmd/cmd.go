// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, booksCommand, authorsCommand, usersCommand, loansCommand, dashboardCommand, exportCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the local database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Create a config.toml from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path for the created config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and persist the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "first-name",
						Usage: "Optional profile first name",
					},
					&cli.StringFlag{
						Name:  "last-name",
						Usage: "Optional profile last name",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Discard the persisted session",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in principal",
				Flags:  jsonFlags(),
				Action: r.AuthWhoami,
			},
			{
				Name:  "forgot",
				Usage: "Request a password reset code",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Required: true,
					},
				},
				Action: r.AuthForgot,
			},
			{
				Name:  "reset",
				Usage: "Redeem a reset code for a new password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "code",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
					},
				},
				Action: r.AuthReset,
			},
		},
	}
}

// booksCommand handles catalog book operations
func booksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "books",
		Aliases: []string{"book"},
		Usage:   "Catalog book operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List books, optionally filtered by a search query",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Search query matched against title and author",
					},
				}, jsonFlags()...),
				Action: r.BooksList,
			},
			{
				Name:  "get",
				Usage: "Show one book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  jsonFlags(),
				Action: r.BooksGet,
			},
			{
				Name:  "add",
				Usage: "Add a book to the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "author-id", Required: true},
					&cli.StringFlag{Name: "isbn"},
					&cli.StringFlag{Name: "genre"},
					&cli.IntFlag{Name: "year"},
					&cli.IntFlag{Name: "copies", Value: 1},
				},
				Action: r.BooksAdd,
			},
			{
				Name:  "update",
				Usage: "Update an existing book",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "author-id"},
					&cli.StringFlag{Name: "isbn"},
					&cli.StringFlag{Name: "genre"},
					&cli.IntFlag{Name: "year"},
					&cli.IntFlag{Name: "copies"},
				},
				Action: r.BooksUpdate,
			},
			{
				Name:  "delete",
				Usage: "Remove a book from the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.BooksDelete,
			},
		},
	}
}

// authorsCommand handles author operations
func authorsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "authors",
		Aliases: []string{"author"},
		Usage:   "Author operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List authors",
				Flags:  jsonFlags(),
				Action: r.AuthorsList,
			},
			{
				Name:  "get",
				Usage: "Show one author",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  jsonFlags(),
				Action: r.AuthorsGet,
			},
			{
				Name:  "add",
				Usage: "Add an author",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "bio"},
					&cli.IntFlag{Name: "birth-year"},
				},
				Action: r.AuthorsAdd,
			},
			{
				Name:  "update",
				Usage: "Update an existing author",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "bio"},
					&cli.IntFlag{Name: "birth-year"},
				},
				Action: r.AuthorsUpdate,
			},
			{
				Name:  "delete",
				Usage: "Remove an author",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.AuthorsDelete,
			},
		},
	}
}

// usersCommand handles member management (staff only)
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Member management (requires a staff account)",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List members",
				Flags:  jsonFlags(),
				Action: r.UsersList,
			},
			{
				Name:  "get",
				Usage: "Show one member",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  jsonFlags(),
				Action: r.UsersGet,
			},
			{
				Name:  "update",
				Usage: "Update a member's role or active flag",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "role"},
					&cli.BoolFlag{Name: "active", Value: true},
				},
				Action: r.UsersUpdate,
			},
			{
				Name:  "delete",
				Usage: "Remove a member",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.UsersDelete,
			},
		},
	}
}

// loansCommand handles loan operations
func loansCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "loans",
		Aliases: []string{"loan"},
		Usage:   "Loan operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List open loans",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Include returned loans",
					},
				}, jsonFlags()...),
				Action: r.LoansList,
			},
			{
				Name:   "overdue",
				Usage:  "List open loans past their due date",
				Flags:  jsonFlags(),
				Action: r.LoansOverdue,
			},
			{
				Name:  "checkout",
				Usage: "Check a book out to a member",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "book", Required: true},
					&cli.StringFlag{Name: "user", Required: true},
				},
				Action: r.LoansCheckout,
			},
			{
				Name:  "return",
				Usage: "Close a loan",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LoansReturn,
			},
		},
	}
}

// dashboardCommand prints aggregate catalog stats
func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Show aggregate catalog stats",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Read the last synced snapshot instead of the live backend",
			},
		}, jsonFlags()...),
		Action: r.Dashboard,
	}
}

// exportCommand handles catalog snapshot sync and exports
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Sync and export the catalog",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Refresh the local catalog snapshot from the backend",
				Action: r.ExportSync,
			},
			{
				Name:  "catalog",
				Usage: "Export the last synced snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
				},
				Action: r.ExportCatalog,
			},
		},
	}
}

// apiCommand handles raw API calls for debugging
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw API calls against the library backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags:  jsonFlags(),
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "delete",
				Usage: "Direct DELETE",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.APIDelete,
			},
		},
	}
}

// tuiCommand launches the interactive terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive terminal UI",
		Action: r.TUI,
	}
}
