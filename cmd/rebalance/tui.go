package main

import (
	"fmt"
	"rebalance/internal/logger"
	"rebalance/internal/ui/page"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type appModel struct {
	page *page.Model
	log  *zap.SugaredLogger
}

func (a appModel) Init() tea.Cmd {
	return a.page.Init()
}

func (a appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(page.SaveResultMsg); ok {
		// TODO: surface save failures on screen instead of only in the log
		if result.Err != nil {
			a.log.Errorw("failed to save portfolio", "error", result.Err)
		} else {
			a.log.Info("portfolio saved")
		}
		return a, nil
	}

	_, cmd := a.page.Update(msg)
	return a, cmd
}

func (a appModel) View() string {
	return a.page.View()
}

func newTuiCmd(opts *rootOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive portfolio screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewFile(logFile)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := logger.WithContext(cmd.Context(), log)
			gateway, err := opts.gateway(ctx)
			if err != nil {
				return err
			}

			p := page.New(ctx, gateway)
			defer p.Close()

			_, err = tea.NewProgram(appModel{page: p, log: log}, tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("failed to run tui: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "rebalance.log", "where to write logs while the screen is open")
	return cmd
}
