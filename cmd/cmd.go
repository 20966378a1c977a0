// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/downbeats/internal/formatter"
	"github.com/urfave/cli/v3"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func idFlag(usage string) cli.Flag {
	return &cli.Int64Flag{
		Name:     "id",
		Usage:    usage,
		Required: true,
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Delete without asking for confirmation",
	}
}

func thumbnailFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "thumbnail",
		Usage: "Path to an image file to upload as the thumbnail (omit to keep the current one)",
	}
}

func categoryFields() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Category name", Required: true},
		&cli.StringFlag{Name: "description", Usage: "Category description", Required: true},
		thumbnailFlag(),
	}
}

func subcategoryFields() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Subcategory name", Required: true},
		&cli.StringFlag{Name: "description", Usage: "Subcategory description", Required: true},
		&cli.Int64Flag{Name: "category", Usage: "Owning category ID", Required: true},
		&cli.Int64Flag{Name: "parent", Usage: "Parent subcategory ID (omit for a top-level subcategory)"},
		thumbnailFlag(),
	}
}

func soundtrackFields() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Soundtrack title", Required: true},
		&cli.StringFlag{Name: "description", Usage: "Soundtrack description", Required: true},
		&cli.StringFlag{Name: "url", Usage: "Link to the soundtrack", Required: true},
		&cli.Int64Flag{Name: "category", Usage: "Owning category ID", Required: true},
		&cli.Int64Flag{Name: "subcategory", Usage: "Owning subcategory ID (omit to attach to the category)"},
		thumbnailFlag(),
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	flags := []cli.Flag{}
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

// categoriesCommand handles category reads and writes
func categoriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "categories",
		Aliases: []string{"category", "cat"},
		Usage:   "Category operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all categories",
				Flags:  outputFlags(),
				Action: r.CategoriesList,
			},
			{
				Name:   "get",
				Usage:  "Show a category with its top-level subcategories and direct soundtracks",
				Flags:  withFlags([]cli.Flag{idFlag("Category ID")}, outputFlags()),
				Action: r.CategoriesGet,
			},
			{
				Name:   "create",
				Usage:  "Create a category",
				Flags:  withFlags(categoryFields(), outputFlags()),
				Action: r.CategoriesCreate,
			},
			{
				Name:   "update",
				Usage:  "Replace a category's fields",
				Flags:  withFlags([]cli.Flag{idFlag("Category ID")}, categoryFields(), outputFlags()),
				Action: r.CategoriesUpdate,
			},
			{
				Name:   "impact",
				Usage:  "Show what deleting a category would remove",
				Flags:  withFlags([]cli.Flag{idFlag("Category ID")}, outputFlags()),
				Action: r.CategoriesImpact,
			},
			{
				Name:   "delete",
				Usage:  "Delete a category and everything below it",
				Flags:  []cli.Flag{idFlag("Category ID"), yesFlag()},
				Action: r.CategoriesDelete,
			},
		},
	}
}

// subcategoriesCommand handles subcategory reads and writes
func subcategoriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "subcategories",
		Aliases: []string{"subcategory", "sub"},
		Usage:   "Subcategory operations",
		Commands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Show a subcategory with its children and soundtracks",
				Flags:  withFlags([]cli.Flag{idFlag("Subcategory ID")}, outputFlags()),
				Action: r.SubcategoriesGet,
			},
			{
				Name:   "create",
				Usage:  "Create a subcategory",
				Flags:  withFlags(subcategoryFields(), outputFlags()),
				Action: r.SubcategoriesCreate,
			},
			{
				Name:   "update",
				Usage:  "Replace a subcategory's fields",
				Flags:  withFlags([]cli.Flag{idFlag("Subcategory ID")}, subcategoryFields(), outputFlags()),
				Action: r.SubcategoriesUpdate,
			},
			{
				Name:   "impact",
				Usage:  "Show what deleting a subcategory would remove",
				Flags:  withFlags([]cli.Flag{idFlag("Subcategory ID")}, outputFlags()),
				Action: r.SubcategoriesImpact,
			},
			{
				Name:   "delete",
				Usage:  "Delete a subcategory and everything below it",
				Flags:  []cli.Flag{idFlag("Subcategory ID"), yesFlag()},
				Action: r.SubcategoriesDelete,
			},
		},
	}
}

// soundtracksCommand handles soundtrack writes. Soundtracks are read through their owner.
func soundtracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "soundtracks",
		Aliases: []string{"soundtrack", "st"},
		Usage:   "Soundtrack operations",
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create a soundtrack",
				Flags:  withFlags(soundtrackFields(), outputFlags()),
				Action: r.SoundtracksCreate,
			},
			{
				Name:   "update",
				Usage:  "Replace a soundtrack's fields",
				Flags:  withFlags([]cli.Flag{idFlag("Soundtrack ID")}, soundtrackFields(), outputFlags()),
				Action: r.SoundtracksUpdate,
			},
			{
				Name:   "delete",
				Usage:  "Delete a soundtrack",
				Flags:  []cli.Flag{idFlag("Soundtrack ID"), yesFlag()},
				Action: r.SoundtracksDelete,
			},
			{
				Name:  "play",
				Usage: "Open a soundtrack link in the default browser",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Soundtrack URL",
						Required: true,
					},
				},
				Action: r.SoundtracksPlay,
			},
		},
	}
}

// treeCommand handles multi-level walks
func treeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tree",
		Usage: "Walk full category trees",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print a category's full tree",
				Flags: withFlags([]cli.Flag{
					&cli.Int64Flag{
						Name:     "category",
						Usage:    "Category ID",
						Required: true,
					},
				}, outputFlags()),
				Action: r.TreeShow,
			},
			{
				Name:  "export",
				Usage: "Export category trees to files",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "category",
						Usage: "Category ID to export (omit to export every category)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: " + formatter.FormatJSON + ", " + formatter.FormatCSV + ", " + formatter.FormatMarkdown + ", " + formatter.FormatText,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: downbeats_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent file writers",
						Value: 3,
					},
				},
				Action: r.TreeExport,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls for diagnostics",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET relative to {API_BASE_URL}/downbeats, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// serveCommand runs the reference API server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the reference Downbeats API backed by SQLite",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: server.port)",
			},
			&cli.StringFlag{
				Name:  "database",
				Usage: "SQLite database path (default: database.path)",
			},
			&cli.StringFlag{
				Name:  "media-dir",
				Usage: "Directory for uploaded thumbnails (default: server.media_dir)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "current",
						Usage: "Write the effective configuration (file, .env and environment) instead of the example",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI",
		Action:  r.TUI,
	}
}
