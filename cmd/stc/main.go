package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/driver"
	"github.com/nissy-dev/stc/pkg/env"
	"github.com/nissy-dev/stc/pkg/types"
)

type CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"warn" enum:"debug,info,warn,error" name:"log-level"`

	Check   CheckCmd   `cmd:"" help:"Type-check entry modules and everything they import."`
	Exports ExportsCmd `cmd:"" help:"Print the export types of checked modules."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// ProjectFlags locate the project and its options.
type ProjectFlags struct {
	Root    string        `help:"Project root; module paths are relative to it." default:"." type:"existingdir"`
	Config  string        `help:"Options file (YAML or JSON), relative to the root." short:"c"`
	Option  []string      `help:"Override an option, e.g. -O strictNullChecks=false." short:"O" name:"option"`
	Rev     string        `help:"Check the files of a git revision instead of the working tree."`
	Jobs    int           `help:"Maximum parallel analyses (0 = GOMAXPROCS)." short:"j"`
	Timeout time.Duration `help:"Abort the run after this long (0 = no limit)."`
	Entries []string      `arg:"" help:"Entry module paths, relative to the root."`
}

type CheckCmd struct {
	ProjectFlags
	JSON bool `help:"Print diagnostics as JSON."`
}

type ExportsCmd struct {
	ProjectFlags
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "devel"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Println("stc", version)
	return nil
}

func (c *CheckCmd) Run(logger *slog.Logger) error {
	res, err := c.run(logger)
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Diagnostics); err != nil {
			return err
		}
	} else {
		printDiagnostics(os.Stdout, res.Diagnostics)
	}
	if n := len(res.Diagnostics); n > 0 {
		return fmt.Errorf("found %d problem(s) in %d module(s)", n, len(modulesWithDiagnostics(res.Diagnostics)))
	}
	return nil
}

func (c *ExportsCmd) Run(logger *slog.Logger) error {
	res, err := c.run(logger)
	if err != nil {
		return err
	}
	for _, path := range res.Paths() {
		exports := res.Exports(path)
		names := make([]string, 0, len(exports))
		for name := range exports {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("%s\n", path)
		for _, name := range names {
			fmt.Printf("  %s: %s\n", name, types.TypeString(exports[name]))
		}
	}
	return nil
}

func (p *ProjectFlags) options() (env.Options, error) {
	opts := env.DefaultOptions()
	if p.Config != "" {
		data, err := os.ReadFile(filepath.Join(p.Root, p.Config))
		if err != nil {
			return env.Options{}, fmt.Errorf("config: %w", err)
		}
		if opts, err = env.ParseOptions(data); err != nil {
			return env.Options{}, err
		}
	}
	values, err := env.ParseOverrides(p.Option)
	if err != nil {
		return env.Options{}, err
	}
	return env.ApplyOverrides(opts, values)
}

func (p *ProjectFlags) source(logger *slog.Logger) (driver.FS, error) {
	if p.Rev == "" {
		return driver.OSFS(p.Root), nil
	}
	src, err := driver.OpenGitSource(p.Root, p.Rev)
	if err != nil {
		return nil, err
	}
	logger.Info("checking git revision", slog.String("rev", p.Rev), slog.String("commit", src.Commit))
	return src.FS, nil
}

func (p *ProjectFlags) run(logger *slog.Logger) (*driver.Result, error) {
	opts, err := p.options()
	if err != nil {
		return nil, err
	}
	e, err := env.New(opts)
	if err != nil {
		return nil, err
	}
	fsys, err := p.source(logger)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	entries := make([]string, len(p.Entries))
	for i, entry := range p.Entries {
		entries[i] = filepath.ToSlash(entry)
	}
	loader := driver.NewLoader(e, fsys, driver.SidecarParser{}).WithLogger(logger)
	return driver.NewScheduler(loader, p.Jobs).WithLogger(logger).Run(ctx, entries)
}

func printDiagnostics(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String())
	}
}

func modulesWithDiagnostics(diags []diag.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		if len(out) == 0 || out[len(out)-1] != d.Path {
			out = append(out, d.Path)
		}
	}
	return out
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	cli := &CLI{}
	parser := kong.Must(cli,
		kong.Name("stc"),
		kong.Description("Static type checker for TypeScript modules."),
		kong.UsageOnError(),
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	logger := newLogger(cli.LogLevel)
	slog.SetDefault(logger)
	err = ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
