package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/trknhr/semantle/internal/tui"
)

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "semantle",
		Short:        "Guess the secret word; the server tells you how semantically close you are",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, false)
			if err != nil {
				return err
			}
			defer a.Close()

			model := tui.NewTuiModel(cmd.Context(), a.submitter, tui.Options{
				StartGame:  a.cfg.Server.StartGame,
				SessionID:  a.sessionID,
				Recorder:   a.recorder,
				GuessLimit: a.cfg.Guess.Limit,
				WinScore:   a.cfg.Guess.WinScore,
			})

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("failed to run TUI: %w", err)
			}
			if out := model.Output(); out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.server, "server", "", "scoring server base URL (overrides SEMANTLE_SERVER_URL)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn, error or none (overrides SEMANTLE_LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&flags.noJournal, "no-journal", false, "do not record guesses in the local journal")

	cmd.AddCommand(
		newGuessCmd(flags),
		newStartCmd(flags),
		newHistoryCmd(flags),
	)

	return cmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}
