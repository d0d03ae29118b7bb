package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-folio/internal/aggregate"
	"github.com/goliatone/go-folio/internal/bootstrap"
	buildcmd "github.com/goliatone/go-folio/internal/commands/build"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/internal/watch"
)

// Global carries process state shared by subcommands.
type Global struct {
	Context context.Context
	Stdout  io.Writer
	Stderr  io.Writer
}

// CLI is the folio command tree.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (defaults only when empty)" env:"FOLIO_CONFIG" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" default:"withargs" help:"Aggregate markdown collections into JSON and write site files"`
	Generate GenerateCmd `cmd:"" help:"Write sitemap, robots.txt, feeds and search index from existing collection files"`
	Check    CheckCmd    `cmd:"" help:"Load and schema-validate existing collection files"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild whenever content or configuration changes"`
	CSS      CSSCmd      `cmd:"" name:"css" help:"Write the code highlighting stylesheet"`
}

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Only   []string `short:"o" sep:"," help:"Build only these collections"`
	NoSite bool     `name:"no-site" help:"Skip sitemap, feeds and search index"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	app, err := root.app(g)
	if err != nil {
		return err
	}
	session := subscribe(app)
	defer session.Close()
	return runBuild(g, app, b.Only, !b.NoSite)
}

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct{}

func (c *GenerateCmd) Run(g *Global, root *CLI) error {
	app, err := root.app(g)
	if err != nil {
		return err
	}
	session := subscribe(app)
	defer session.Close()
	return runGenerate(g, app)
}

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Only []string `short:"o" sep:"," help:"Check only these collections"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	app, err := root.app(g)
	if err != nil {
		return err
	}
	session := subscribe(app)
	defer session.Close()

	var checks []buildcmd.CheckResult
	err = dispatcher.Dispatch(g.Context, buildcmd.CheckCollectionsCommand{
		Only:           c.Only,
		ResultCallback: func(env buildcmd.ResultEnvelope) { checks = env.Checks },
	})
	for _, check := range checks {
		if check.Err != nil {
			fmt.Fprintf(g.Stdout, "%-14s FAILED: %v\n", check.Collection, check.Err)
			continue
		}
		fmt.Fprintf(g.Stdout, "%-14s ok items=%d %s\n", check.Collection, check.Items, check.Path)
	}
	return err
}

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Only []string `short:"o" sep:"," help:"Rebuild only these collections"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	app, err := root.app(g)
	if err != nil {
		return err
	}
	session := subscribe(app)
	defer session.Close()

	if err := runBuild(g, app, w.Only, true); err != nil {
		fmt.Fprintf(g.Stderr, "initial build failed: %v\n", err)
	}

	paths := []string{app.Config.ContentDir}
	if root.Config != "" {
		paths = append(paths, root.Config)
	}
	watcher := watch.New(paths, watch.WithLogger(app.Logger))
	fmt.Fprintf(g.Stdout, "watching %s\n", strings.Join(paths, ", "))
	return watcher.Run(g.Context, func(ctx context.Context) error {
		return runBuild(&Global{Context: ctx, Stdout: g.Stdout, Stderr: g.Stderr}, app, w.Only, true)
	})
}

// CSSCmd implements the 'css' command.
type CSSCmd struct {
	Output string `short:"o" help:"Stylesheet path (stdout when empty)" type:"path"`
}

func (c *CSSCmd) Run(g *Global, root *CLI) error {
	app, err := root.app(g)
	if err != nil {
		return err
	}
	css, err := app.Highlighter.CSS()
	if err != nil {
		return err
	}
	if c.Output == "" {
		_, err = io.WriteString(g.Stdout, css)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.Output, []byte(css), 0o644)
}

func (c *CLI) app(g *Global) (*bootstrap.App, error) {
	cfg, err := runtimeconfig.Load(c.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return bootstrap.New(cfg, bootstrap.WithVerbose(c.Verbose), bootstrap.WithLogOutput(g.Stderr))
}

type subscriptions struct {
	cancel []func()
}

func (s *subscriptions) Close() {
	for _, unsubscribe := range s.cancel {
		unsubscribe()
	}
}

// subscribe routes build messages to this app's handlers.
func subscribe(app *bootstrap.App) *subscriptions {
	build := dispatcher.SubscribeCommand(app.Commands.Build)
	generate := dispatcher.SubscribeCommand(app.Commands.Generate)
	check := dispatcher.SubscribeCommand(app.Commands.Check)
	return &subscriptions{cancel: []func(){build.Unsubscribe, generate.Unsubscribe, check.Unsubscribe}}
}

func runBuild(g *Global, app *bootstrap.App, only []string, site bool) error {
	var summary *aggregate.Summary
	err := dispatcher.Dispatch(g.Context, buildcmd.BuildCollectionsCommand{
		Only:           only,
		ResultCallback: func(env buildcmd.ResultEnvelope) { summary = env.Summary },
	})
	aggregate.WriteSummary(g.Stdout, summary)
	if err != nil {
		return err
	}
	if !site || !app.Config.Generator.Enabled {
		return nil
	}
	return runGenerate(g, app)
}

func runGenerate(g *Global, app *bootstrap.App) error {
	return dispatcher.Dispatch(g.Context, buildcmd.GenerateSiteFilesCommand{
		ResultCallback: func(env buildcmd.ResultEnvelope) {
			if env.Site == nil {
				return
			}
			for _, file := range env.Site.Files {
				fmt.Fprintf(g.Stdout, "wrote %s\n", file)
			}
		},
	})
}
