package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/discover"
	"github.com/reggroux/loop-to-markdown/export"
	"github.com/reggroux/loop-to-markdown/fs"
	"github.com/reggroux/loop-to-markdown/goquery"
	"github.com/reggroux/loop-to-markdown/htmltomarkdown"
	"github.com/reggroux/loop-to-markdown/rod"
	lmslog "github.com/reggroux/loop-to-markdown/slog"
	"github.com/reggroux/loop-to-markdown/sqlite"
	"golang.org/x/time/rate"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Driver overrides browser wiring for end-to-end testing.
	Driver looptomd.Driver
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("loop2md"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'loop2md --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set LOOP2MD_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	deps.DB = m.DB
	deps.Runs = sqlite.NewRunService(m.DB)
	deps.Manifests = fs.NewManifestStore(cli.Manifest)
	if cli.Verbose {
		deps.Runs = lmslog.NewLoggingRunService(deps.Runs, logger)
		deps.Manifests = lmslog.NewLoggingManifestStore(deps.Manifests, logger)
	}

	// Wire browser-backed dependencies for commands that need one
	if cmd == "discover" || cmd == "export" {
		driver := m.Driver
		if driver == nil {
			var opts []rod.ManagerOption
			if cli.Headful {
				opts = append(opts, rod.WithHeadful())
			}
			if cli.UserDataDir != "" {
				opts = append(opts, rod.WithUserDataDir(cli.UserDataDir))
			}
			bm, err := rod.NewBrowserManager(opts...)
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			defer bm.Close()

			rodDriver, err := rod.NewDriver(bm)
			if err != nil {
				return fmt.Errorf("failed to open page: %w", err)
			}
			defer rodDriver.Close()
			driver = rodDriver
		}
		if cli.Verbose {
			driver = rod.NewLoggingDriver(driver, logger)
		}
		deps.Driver = driver
	}

	if cmd == "discover" {
		deps.Discoverer = &discover.Discoverer{
			Driver:  deps.Driver,
			BaseURL: cli.Discover.URL,
		}
	}

	if cmd == "export" {
		dir := filepath.Clean(cli.Export.Dir)
		deps.Writer = fs.NewTreeWriter(filepath.Dir(dir), filepath.Base(dir))

		exporter := &export.Exporter{
			Driver:    deps.Driver,
			Extractor: goquery.NewExtractor(),
			Converter: htmltomarkdown.NewConverter(),
			Writer:    deps.Writer,
			Runs:      deps.Runs,
			Force:     cli.Export.Force,
			Logf: func(format string, args ...any) {
				fmt.Fprintf(stderr, format+"\n", args...)
			},
		}
		if cli.Export.Rate > 0 {
			exporter.Limiter = rate.NewLimiter(rate.Limit(cli.Export.Rate), 1)
		}
		if !cli.Export.NoAssets {
			exporter.Assets = &export.AssetFetcher{Dir: deps.Writer.AssetDir()}
		}
		deps.Exporter = exporter
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("LOOP2MD_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "loop2md.db"
	}
	dir := filepath.Join(home, ".loop2md")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "loop2md.db")
}
