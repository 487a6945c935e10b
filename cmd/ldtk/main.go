// Command ldtk inspects LDtk projects: it prints summaries, exports a
// project to SQLite, runs Tengo checks against it and watches it for
// changes.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/milk9111/ldtk/levels"
	"github.com/sirupsen/logrus"
)

type globalOptions struct {
	Config        string `short:"c" long:"config" description:"YAML config file"`
	LogLevel      string `long:"log-level" description:"Log level (trace, debug, info, warn, error)"`
	LogFormat     string `long:"log-format" choice:"text" choice:"json" description:"Log format"`
	StrictVersion bool   `long:"strict-version" description:"Refuse projects saved by a different LDtk version"`
	Format        string `short:"f" long:"format" choice:"text" choice:"json" choice:"yaml" description:"Output format"`
}

type projectArg struct {
	Project string `positional-arg-name:"project" description:"Path to the .ldtk project file"`
}

type app struct {
	opts   globalOptions
	stdout io.Writer
	stderr io.Writer
	log    *logrus.Logger
	loader *levels.Loader
	format string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}

	parser := flags.NewNamedParser("ldtk", flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.AddGroup("Global Options", "", &a.opts); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	commands := []struct {
		name, short, long string
		data              any
	}{
		{"info", "Summarize a project", "Load a project with its external levels and print a summary.", &infoCommand{app: a}},
		{"levels", "List levels", "List every level of a project, including the levels of its worlds.", &levelsCommand{app: a}},
		{"export", "Export to SQLite", "Write a project's levels, layers, entities and fields to a SQLite database.", &exportCommand{app: a}},
		{"run", "Run a Tengo script", "Run a Tengo script against a project and print its reports.", &runCommand{app: a}},
		{"watch", "Watch for changes", "Reload a project whenever it or one of its level files changes.", &watchCommand{app: a}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if err := a.setup(); err != nil {
			return err
		}
		return cmd.Execute(args)
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return 0
		}
		fmt.Fprintln(stderr, "ldtk:", err)
		return 1
	}
	return 0
}

// setup merges the config file into the command-line options and builds
// the logger and loader the commands share.
func (a *app) setup() error {
	cfg := defaultConfig()
	if a.opts.Config != "" {
		loaded, err := loadConfig(a.opts.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.override(a.opts)

	log, err := newLogger(cfg, a.stderr)
	if err != nil {
		return err
	}
	a.log = log
	a.format = cfg.Format

	a.loader = levels.NewLoader()
	a.loader.Log = log
	a.loader.StrictVersion = cfg.StrictVersion
	return nil
}

func newLogger(cfg Config, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("ldtk: %w", err)
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return log, nil
}
