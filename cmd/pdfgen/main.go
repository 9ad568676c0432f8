// pdfgen turns every row of a SQLite table into one PDF form, optionally
// padded to a per-row target size, for load-testing document pipelines.
//
// The database is either an existing file (--db) or generated first by the
// upstream schema generator (--workspace/--database), in which case it is
// removed again after the run unless --keep-database is given.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"go-pdf-fixtures/internal/config"
	"go-pdf-fixtures/internal/fabricate"
	"go-pdf-fixtures/internal/logger"
	"go-pdf-fixtures/internal/model"
	"go-pdf-fixtures/internal/pipeline"
	"go-pdf-fixtures/internal/store"
)

var version = "1.0.0"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// usageError marks bad command-line input; it exits with status 2
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
func (e *usageError) ExitCode() int { return 2 }

func usagef(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("❌ Error: "+err.Error()))
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// options holds the parsed command line
type options struct {
	workspace      string
	database       string
	table          string
	output         string
	image          bool
	title          string
	entity         string
	keepDatabase   bool
	databaseOutDir string
	dbPath         string
	configPath     string
	workers        int
	validate       bool
	verbose        bool
	version        bool
	help           bool

	flags *pflag.FlagSet
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("pdfgen", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&opts.workspace, "workspace", "w", "", "generator workspace name (default from config)")
	fs.StringVarP(&opts.database, "database", "d", "", "generator database to build")
	fs.StringVarP(&opts.table, "table", "t", "", "table to turn into PDFs (required)")
	fs.StringVarP(&opts.output, "output", "o", "", "output directory for generated PDFs (required)")
	fs.BoolVar(&opts.image, "image", false, "generate image-based PDFs that simulate scanned documents")
	fs.StringVar(&opts.title, "title", "", "form title (default: table name, humanized)")
	fs.StringVarP(&opts.entity, "entity", "e", "", "generate only this table/entity")
	fs.BoolVar(&opts.keepDatabase, "keep-database", false, "keep the generated database after the run")
	fs.StringVar(&opts.databaseOutDir, "database-output-dir", "", "directory for the generated database (default: temporary)")
	fs.StringVar(&opts.dbPath, "db", "", "use an existing SQLite database instead of generating one")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	fs.IntVar(&opts.workers, "workers", 1, "rows processed concurrently")
	fs.BoolVar(&opts.validate, "validate", false, "structurally validate every PDF before padding")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging and detailed generator progress")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	fs.BoolVarP(&opts.help, "help", "h", false, "show help")
	return fs
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := newFlagSet(opts)
	opts.flags = fs
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			opts.help = true
			return opts, nil
		}
		return nil, &usageError{err: err}
	}
	if opts.help || opts.version {
		return opts, nil
	}

	if rest := fs.Args(); len(rest) > 0 {
		return nil, usagef("unexpected argument: %s", rest[0])
	}
	if opts.table == "" {
		return nil, usagef("--table is required")
	}
	if opts.output == "" {
		return nil, usagef("--output is required")
	}
	if opts.dbPath == "" && opts.database == "" {
		return nil, usagef("either --db or --database is required")
	}
	if opts.dbPath != "" && opts.database != "" {
		return nil, usagef("--db and --database are mutually exclusive")
	}
	return opts, nil
}

// applyTo overlays explicitly set flags onto cfg
func (o *options) applyTo(cfg *config.Config) {
	if o.image {
		cfg.Mode = model.Raster
	}
	if o.flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if o.validate {
		cfg.ValidateArtifacts = true
	}
	if o.workspace != "" {
		cfg.Fabricate.Workspace = o.workspace
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.help {
		printHelp(stdout, newFlagSet(&options{}))
		return nil
	}
	if opts.version {
		fmt.Fprintf(stdout, "pdfgen %s\n", version)
		return nil
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger.SetLogger(logger.SlogFunc(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))))
	defer logger.SetLogger(nil)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.applyTo(cfg)
	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}

	dbPath := opts.dbPath
	if dbPath == "" {
		fmt.Fprintln(stdout, headerStyle.Render(fmt.Sprintf("🚀 Generating database '%s' from workspace '%s'...",
			opts.database, cfg.Fabricate.Workspace)))

		mgr := fabricate.NewManager(cfg.Fabricate.Workspace, fabricate.NewCommandGenerator(cfg.Fabricate.Command), stdout)
		if !opts.keepDatabase {
			defer mgr.Cleanup()
		}
		dest, err := mgr.GenerateDatabase(ctx, opts.database, opts.databaseOutDir, opts.entity,
			fabricate.NewProgressPrinter(stdout, true))
		if err != nil {
			return err
		}
		if dbPath, err = fabricate.ResolveDatabasePath(dest); err != nil {
			return err
		}
	}

	return generate(ctx, cfg, opts, dbPath, stdout)
}

func generate(ctx context.Context, cfg *config.Config, opts *options, dbPath string, stdout io.Writer) error {
	fmt.Fprintln(stdout, headerStyle.Render(fmt.Sprintf("\n📄 Generating PDFs from table '%s'...", opts.table)))
	fmt.Fprintf(stdout, "Connecting to database: %s\n", dbPath)

	source, err := store.Open(dbPath, opts.table)
	if err != nil {
		return err
	}
	defer source.Close()

	job := cfg.Job(dbPath, opts.table, opts.output, opts.title)
	orch := pipeline.NewOrchestrator(job, source, pipeline.WithProgress(stdout))
	_, err = orch.Run(ctx)
	return err
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprint(w, `pdfgen: generate PDF forms from database rows for load testing.

Each row of the table becomes one PDF. A row's file_size column (KB) pads
the PDF to at least that size; its file_name column names the file.

Usage:
  pdfgen [flags]

Examples:
  # Generate PDFs from a generated database
  pdfgen --workspace Default --database ecommerce --table customers --output ./pdfs

  # Image mode with a custom title
  pdfgen -w MyWorkspace -d ecommerce -t orders -o ./pdfs --image --title "Order Forms"

  # Use an existing SQLite file
  pdfgen --db ./fixtures.db --table customers --output ./pdfs

Flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
