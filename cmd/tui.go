package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/controller"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/tui"
	"github.com/taskdeck/taskdeck/internal/watcher"
)

// runTUI launches the interactive task list. It is the root command's
// default action.
func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // best-effort flush

	buildController := func() (*controller.Controller, error) {
		freshCfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		gw := newGateway(freshCfg, log)
		st := store.New(freshCfg.PageSize, log)
		return controller.New(gw, st, log), nil
	}

	ctrl, err := buildController()
	if err != nil {
		return err
	}

	model := tui.NewModel(ctrl, cfg.Timeout(), buildController)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Reload the controller when the config file changes on disk.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := watcher.New(cfg.Path(), func() {
		program.Send(tui.ReloadMsg{})
	})
	if err != nil {
		log.Warn("config watcher unavailable", zap.Error(err))
	} else {
		defer w.Close() //nolint:errcheck // shutdown path
		go w.Run(ctx, func(err error) {
			log.Warn("config watcher error", zap.Error(err))
		})
	}

	if _, err := program.Run(); err != nil {
		return apierr.Wrap(apierr.InternalError, err, "running interactive UI")
	}
	return nil
}
