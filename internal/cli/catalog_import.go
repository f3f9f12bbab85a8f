// Package cli implements the command line subcommands.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mkadlec/bookcatalog/internal/database"
	"github.com/mkadlec/bookcatalog/internal/database/audit"
	"github.com/mkadlec/bookcatalog/internal/database/catalogimport"
	"github.com/mkadlec/bookcatalog/internal/importer"
)

// CatalogImportCommand reconciles a catalog file against the database
// without starting the server.
type CatalogImportCommand struct {
	FilePath     string
	DatabasePath string
	Verbose      bool
}

func NewCatalogImportCommand() *CatalogImportCommand {
	return &CatalogImportCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CatalogImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the catalog batch file (JSON array or CSV)")
	fs.StringVar(&cmd.DatabasePath, "db", "./catalog.db", "Path to the catalog database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reconcile a catalog batch file against the book database.\n")
		fmt.Fprintf(os.Stderr, "Books present in the file are upserted; active books absent from it\n")
		fmt.Fprintf(os.Stderr, "are deactivated.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file ./books.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file ./books.csv -db /data/catalog.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}

	return nil
}

// Run executes the import command.
func (cmd *CatalogImportCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	imp := importer.NewImporter(
		catalogimport.NewRepository(db.DB),
		audit.NewRepository(db.DB),
	)

	result, err := imp.Run(cmd.FilePath)
	if err != nil {
		return err
	}

	fmt.Printf("Import complete: %d added, %d updated, %d skipped, %d deactivated\n",
		result.Added, result.Updated, result.Skipped, result.Deactivated)
	return nil
}
