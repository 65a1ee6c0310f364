package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/trknhr/semantle/internal/store"
)

var errJournalDisabled = errors.New("journal is disabled (set SEMANTLE_JOURNAL=true or drop --no-journal)")

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent guesses from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			a, err := newApp(flags, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.db == nil {
				return errJournalDisabled
			}

			entries, err := a.journal.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no guesses recorded yet")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")

	return cmd
}

func renderHistory(entries []store.Entry) string {
	rows := lo.Map(entries, func(e store.Entry, _ int) []string {
		score := "-"
		if e.Score != nil {
			score = strconv.FormatFloat(*e.Score, 'f', -1, 64)
		}
		detail := e.Outcome
		if e.Error != "" {
			detail += ": " + e.Error
		}
		return []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(e.SessionID),
			strconv.FormatUint(e.Seq, 10),
			e.Guess,
			score,
			detail,
		}
	})

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "SESSION", "#", "GUESS", "SCORE", "OUTCOME").
		Rows(rows...).
		Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
