package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/dumper/internal/shared"
	"github.com/desertthunder/dumper/internal/theme"
	"github.com/urfave/cli/v3"
)

// ThemeShow prints the stored preference and what it resolves to on this terminal.
func (r *Runner) ThemeShow(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	return r.printTheme(r.themes(db))
}

// ThemeToggle advances the stored preference one step.
func (r *Runner) ThemeToggle(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctrl := r.themes(db)
	if _, err := ctrl.Toggle(); err != nil {
		return err
	}
	return r.printTheme(ctrl)
}

// ThemeSet stores an explicit preference.
func (r *Runner) ThemeSet(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("preference")
	if raw == "" {
		return fmt.Errorf("%w: preference (light, dark or system)", shared.ErrMissingArgument)
	}
	pref, err := theme.Parse(raw)
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctrl := r.themes(db)
	if err := ctrl.Set(pref); err != nil {
		return err
	}
	return r.printTheme(ctrl)
}

func (r *Runner) printTheme(ctrl *theme.Controller) error {
	return r.writePlain("%s %s (resolved: %s)\n", ctrl.Icon(), ctrl.Preference(), ctrl.Resolved())
}
