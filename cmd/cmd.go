// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the credential database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml from the default template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the file (defaults to --config)",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the credential database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// loginCommand signs in and stores the access token.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email (defaults to the remembered address)",
			},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Usage:    "Account password",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "remember",
				Usage: "Remember the email for the next sign in",
			},
		},
		Action: r.Login,
	}
}

// registerCommand creates an account.
func registerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Display name",
			},
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Account email",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Usage:    "Account password",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "confirm-password",
				Usage:    "Repeat the password",
				Required: true,
			},
		},
		Action: r.Register,
	}
}

// logoutCommand forgets the stored token.
func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the stored access token",
		Action: r.Logout,
	}
}

// authCommand handles authentication state.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show whether a token is stored and when it expires",
				Action: r.AuthStatus,
			},
		},
	}
}

// tableFlags shape the rows of list and export.
func tableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Column to sort by",
		},
		&cli.BoolFlag{
			Name:  "desc",
			Usage: "Sort descending",
		},
		&cli.StringSliceFlag{
			Name:  "filter",
			Usage: "Keep rows whose column contains a value, as column=value (repeatable)",
		},
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"q"},
			Usage:   "Fuzzy search across visible columns",
		},
	}
}

func idFlag() cli.Flag {
	return &cli.IntFlag{Name: "id", Usage: "Movie ID", Required: true}
}

// movieFieldFlags are the record fields shared by add and update.
func movieFieldFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Title", Required: required},
		&cli.StringFlag{Name: "type", Usage: "Movie or TV Show", Required: required},
		&cli.StringFlag{Name: "director", Usage: "Director", Required: required},
		&cli.StringFlag{Name: "budget", Usage: "Budget", Required: required},
		&cli.StringFlag{Name: "location", Usage: "Filming location", Required: required},
		&cli.StringFlag{Name: "duration", Usage: "Running time in minutes", Required: required},
		&cli.StringFlag{Name: "time", Usage: "Release year or date", Required: required},
		&cli.StringFlag{Name: "image", Usage: "Path to a poster image", Required: required},
	}
}

// moviesCommand handles the favorites collection.
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m", "favs"},
		Usage:   "Favorite movies and TV shows",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List favorites",
				Flags: append(tableFlags(),
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number, starting at 1",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Rows per page (defaults to ui.page_size)",
					},
					&cli.StringSliceFlag{
						Name:  "hide",
						Usage: "Column to hide (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				),
				Action: r.MoviesList,
			},
			{
				Name:  "view",
				Usage: "Show one favorite",
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the poster in the browser",
					},
				},
				Action: r.MoviesView,
			},
			{
				Name:   "add",
				Usage:  "Add a favorite",
				Flags:  movieFieldFlags(true),
				Action: r.MoviesAdd,
			},
			{
				Name:   "update",
				Usage:  "Edit a favorite; unset fields keep their values",
				Flags:  append([]cli.Flag{idFlag()}, movieFieldFlags(false)...),
				Action: r.MoviesUpdate,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a favorite",
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.MoviesDelete,
			},
			{
				Name:  "export",
				Usage: "Export favorites to CSV, Markdown or text",
				Flags: append(tableFlags(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, md or txt",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to favorites.<format>)",
					},
				),
				Action: r.MoviesExport,
			},
			{
				Name:  "poster",
				Usage: "Download a favorite's poster",
				Flags: []cli.Flag{
					idFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to the poster's file name)",
					},
				},
				Action: r.MoviesPoster,
			},
			{
				Name:  "posters",
				Usage: "Download every poster in the (filtered) collection",
				Flags: append(tableFlags(),
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (defaults to posters_<epoch>)",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent downloads (max 10)",
						Value:   5,
					},
				),
				Action: r.MoviesPosters,
			},
		},
	}
}

// apiCommand handles direct API calls for debugging.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the favorites service",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "anonymous",
						Usage: "Send without the bearer token",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with a JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "anonymous",
						Usage: "Send without the bearer token",
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}
