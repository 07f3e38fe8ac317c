// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func collectionFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "todo",
		Usage: "Operate on the todo collection instead of songs",
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the songlist HTTP API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.host and server.port)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles database and configuration setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and maintenance commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
			{
				Name:   "reset",
				Usage:  "Drop and recreate the collection tables",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupReset,
			},
			{
				Name:  "truncate",
				Usage: "Delete all records from a collection",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "collection",
						Usage: "Collection to truncate: songs, todo or all",
						Value: "all",
					},
				},
				Action: r.SetupTruncate,
			},
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the file to create",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// seedCommand fills the database with mock songs
func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert random songs into both collections",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "songs",
				Usage: "Number of songs to insert",
				Value: 30,
			},
			&cli.IntFlag{
				Name:  "todo",
				Usage: "Number of todo songs to insert",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Delete existing records first",
			},
			&cli.BoolFlag{
				Name:  "append",
				Usage: "Keep existing records without asking",
			},
		},
		Action: r.Seed,
	}
}

// loginCommand exchanges the operator credential for a token
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in to the server and save the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Operator username (default: auth.username)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Operator password (default: auth.password)",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Print the token instead of saving it",
			},
		},
		Action: r.Login,
	}
}

// healthCommand checks the server
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server and database health",
		Action: r.Health,
	}
}

// songsCommand handles catalogue operations against a running server
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Manage songs on a running server",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a collection",
				Flags: []cli.Flag{
					collectionFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SongsList,
			},
			{
				Name:    "browse",
				Aliases: []string{"ui"},
				Usage:   "Browse, move and delete songs interactively",
				Flags:   []cli.Flag{collectionFlag()},
				Action:  r.Browse,
			},
			{
				Name:  "add",
				Usage: "Create a song",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					collectionFlag(),
					&cli.StringSliceFlag{
						Name:    "singer",
						Aliases: []string{"s"},
						Usage:   "Singer (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Tag (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:    "link",
						Aliases: []string{"l"},
						Usage:   "Link (repeatable)",
					},
				},
				Action: r.SongsAdd,
			},
			{
				Name:  "update",
				Usage: "Update fields of a song",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					collectionFlag(),
					&cli.StringFlag{
						Name:  "name",
						Usage: "New name",
					},
					&cli.StringSliceFlag{
						Name:  "singer",
						Usage: "Replace singers (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Replace tags (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "link",
						Usage: "Replace links (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "clear-tags",
						Usage: "Remove all tags",
					},
					&cli.BoolFlag{
						Name:  "clear-links",
						Usage: "Remove all links",
					},
				},
				Action: r.SongsUpdate,
			},
			{
				Name:      "move",
				Usage:     "Move songs between collections",
				ArgsUsage: "<id>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "to-songs",
						Usage: "Move from todo to songs (default: songs to todo)",
					},
				},
				Action: r.SongsMove,
			},
			{
				Name:      "delete",
				Usage:     "Delete songs from a collection",
				ArgsUsage: "<id>...",
				Flags:     []cli.Flag{collectionFlag()},
				Action:    r.SongsDelete,
			},
			{
				Name:  "import",
				Usage: "Create songs from a JSON or CSV file",
				Flags: []cli.Flag{
					collectionFlag(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to a .json or .csv file",
						Required: true,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests",
						Value: 4,
					},
				},
				Action: r.SongsImport,
			},
			{
				Name:  "export",
				Usage: "Export a collection",
				Flags: []cli.Flag{
					collectionFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: table, csv, json or markdown",
						Value: "table",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.SongsExport,
			},
		},
	}
}
