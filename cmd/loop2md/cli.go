package main

import (
	"context"
	"io"

	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/discover"
	"github.com/reggroux/loop-to-markdown/export"
	"github.com/reggroux/loop-to-markdown/fs"
	"github.com/reggroux/loop-to-markdown/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	DB         *sqlite.DB
	Manifests  looptomd.ManifestStore
	Runs       looptomd.RunService
	Driver     looptomd.Driver
	Discoverer *discover.Discoverer
	Exporter   *export.Exporter
	Writer     *fs.TreeWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Discover DiscoverCmd `cmd:"" help:"Discover workspaces and pages, writing a manifest"`
	Export   ExportCmd   `cmd:"" help:"Export manifest pages to a Markdown tree"`
	Tree     TreeCmd     `cmd:"" help:"Print the manifest's page hierarchy"`
	Runs     RunsCmd     `cmd:"" help:"List recent export runs"`

	Manifest    string `default:"loop-manifest.json" help:"Manifest file path"`
	Headful     bool   `help:"Run the browser with a visible window (needed for interactive sign-in)"`
	UserDataDir string `help:"Browser profile directory, reused across runs to keep the session"`
	Verbose     bool   `short:"v" help:"Enable verbose logging to stderr"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	URL string `arg:"" help:"Base URL of the Loop application"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir      string  `arg:"" optional:"" default:"loop-export" help:"Output directory"`
	Force    bool    `short:"f" help:"Export pages even when unchanged since the last run"`
	Rate     float64 `default:"1" help:"Page navigations per second"`
	NoAssets bool    `help:"Leave image references remote instead of downloading them"`
}

// TreeCmd is the "tree" subcommand.
type TreeCmd struct {
	OPML bool `help:"Emit the hierarchy as OPML instead of an ASCII tree"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Limit int `default:"10" help:"Maximum number of runs to show"`
}
