package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/milk9111/ldtk/index"
	"github.com/milk9111/ldtk/schema"
	"github.com/milk9111/ldtk/script"
	"github.com/sirupsen/logrus"
)

type infoCommand struct {
	app  *app
	Args projectArg `positional-args:"yes" required:"yes"`
}

func (c *infoCommand) Execute([]string) error {
	p, err := c.app.loader.LoadFullProject(c.Args.Project)
	if err != nil {
		return err
	}
	s := summarize(c.Args.Project, p)
	return c.app.write(s, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "project\t%s\n", s.Path)
		fmt.Fprintf(tw, "jsonVersion\t%s\n", s.JSONVersion)
		fmt.Fprintf(tw, "externalLevels\t%t\n", s.ExternalLevels)
		fmt.Fprintf(tw, "levelState\t%s\n", s.LevelState)
		fmt.Fprintf(tw, "levels\t%d\n", s.Levels)
		fmt.Fprintf(tw, "worlds\t%d\n", s.Worlds)
		fmt.Fprintf(tw, "entities\t%d\n", s.Entities)
		fmt.Fprintf(tw, "overlaps\t%d\n", s.Overlaps)
		fmt.Fprintf(tw, "defs\t%d layers, %d entities, %d tilesets, %d enums\n", s.LayerDefs, s.EntityDefs, s.Tilesets, s.Enums)
		return tw.Flush()
	})
}

type levelsCommand struct {
	app  *app
	Args projectArg `positional-args:"yes" required:"yes"`
}

func (c *levelsCommand) Execute([]string) error {
	p, err := c.app.loader.LoadFullProject(c.Args.Project)
	if err != nil {
		return err
	}
	rows := listLevels(p)
	return c.app.write(rows, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "UID\tIDENTIFIER\tWORLD\tPOSITION\tSIZE\tLAYERS\tENTITIES")
		for _, r := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d,%d\t%dx%d\t%d\t%d\n",
				r.UID, r.Identifier, r.World, r.WorldX, r.WorldY, r.PxWid, r.PxHei, r.Layers, r.Entities)
		}
		return tw.Flush()
	})
}

type exportCommand struct {
	app  *app
	DB   string     `long:"db" required:"yes" description:"SQLite database to write"`
	Args projectArg `positional-args:"yes" required:"yes"`
}

func (c *exportCommand) Execute([]string) error {
	p, err := c.app.loader.LoadFullProject(c.Args.Project)
	if err != nil {
		return err
	}
	db, err := index.Open(c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Import(ctx, p); err != nil {
		return err
	}
	counts, err := db.Counts(ctx)
	if err != nil {
		return err
	}
	c.app.log.WithFields(logrus.Fields{
		"db":       c.DB,
		"levels":   counts["level"],
		"entities": counts["entity"],
	}).Info("exported project")

	return c.app.write(counts, func(w io.Writer) error {
		for _, table := range []string{"level", "layer", "entity", "field"} {
			fmt.Fprintf(w, "%s\t%d\n", table, counts[table])
		}
		return nil
	})
}

type runCommand struct {
	app          *app
	Script       string     `short:"s" long:"script" required:"yes" description:"Tengo script to run"`
	FailOnReport bool       `long:"fail-on-report" description:"Exit with an error when the script reports anything"`
	Args         projectArg `positional-args:"yes" required:"yes"`
}

type runOutput struct {
	Reports []string `json:"reports" yaml:"reports"`
	Result  any      `json:"result,omitempty" yaml:"result,omitempty"`
}

func (c *runCommand) Execute([]string) error {
	src, err := os.ReadFile(c.Script)
	if err != nil {
		return fmt.Errorf("ldtk: load %s: %w", c.Script, err)
	}
	p, err := c.app.loader.LoadFullProject(c.Args.Project)
	if err != nil {
		return err
	}

	res, err := script.Run(context.Background(), src, p)
	if err != nil {
		return err
	}
	out := runOutput{Reports: res.Reports, Result: res.Value}
	if out.Reports == nil {
		out.Reports = []string{}
	}
	if err := c.app.write(out, func(w io.Writer) error {
		for _, r := range out.Reports {
			fmt.Fprintln(w, r)
		}
		if out.Result != nil {
			fmt.Fprintf(w, "result: %v\n", out.Result)
		}
		return nil
	}); err != nil {
		return err
	}

	if c.FailOnReport && len(res.Reports) > 0 {
		return fmt.Errorf("ldtk: %s reported %d problem(s)", c.Script, len(res.Reports))
	}
	return nil
}

type watchCommand struct {
	app  *app
	Args projectArg `positional-args:"yes" required:"yes"`
}

func (c *watchCommand) Execute([]string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.watch(ctx)
}

func (c *watchCommand) watch(ctx context.Context) error {
	path := c.Args.Project
	p, err := c.app.loader.LoadFullProject(path)
	if err != nil {
		return err
	}
	if err := c.print(p); err != nil {
		return err
	}

	w, err := c.app.loader.Watch(path)
	if err != nil {
		return err
	}
	defer w.Close()
	c.app.log.WithField("path", path).Info("watching project")

	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-w.Projects:
			if !ok {
				return errors.New("ldtk: watcher stopped")
			}
			if err := c.print(p); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("ldtk: watcher stopped")
			}
			c.app.log.WithError(err).Error("reload failed")
		}
	}
}

func (c *watchCommand) print(p *schema.Project) error {
	s := summarize(c.Args.Project, p)
	return c.app.write(s, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s: %d levels, %d entities (%s)\n", s.Path, s.Levels, s.Entities, s.LevelState)
		return err
	})
}
