package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trknhr/semantle/internal/guess"
	"github.com/trknhr/semantle/internal/logger"
	"github.com/trknhr/semantle/internal/scoring"
)

const maxParallelGuesses = 4

func newGuessCmd(flags *rootFlags) *cobra.Command {
	var start bool

	cmd := &cobra.Command{
		Use:   "guess WORD...",
		Short: "Score one or more guesses and print the similarity",
		Example: `
  # Score a single word
  semantle guess previously

  # Score several words against a remote server
  semantle guess --server https://scores.example.com:5000 cat dog house`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if start {
				if err := a.submitter.StartGame(ctx); err != nil {
					return fmt.Errorf("start game: %w", err)
				}
			}

			tickets := make([]guess.Ticket, len(args))
			for i, word := range args {
				t, err := a.submitter.Begin(word)
				if err != nil {
					return fmt.Errorf("guess %d: %w", i+1, err)
				}
				tickets[i] = t
			}

			results := make([]guess.Result, len(tickets))
			var g errgroup.Group
			g.SetLimit(maxParallelGuesses)
			for i, t := range tickets {
				g.Go(func() error {
					results[i] = a.submitter.Send(ctx, t)
					return nil
				})
			}
			_ = g.Wait()

			failed := 0
			latest := a.submitter.Latest()
			for _, res := range results {
				// every score is printed, so it counts as applied; only the
				// newest ticket moves the displayed output
				outcome := guess.Applied
				if res.Err != nil || res.Seq == latest {
					outcome = a.submitter.Apply(res)
				}
				a.record(res, outcome)

				if res.Err != nil {
					failed++
					if errors.Is(res.Err, scoring.ErrTransport) {
						logger.WarnUnreachable(a.cfg.Server.BaseURL)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\terror: %v\n", res.Guess, res.Err)
					continue
				}

				line := guess.FormatScore(res.Score)
				if len(results) > 1 {
					line = res.Guess + "\t" + line
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d guesses failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&start, "start", false, "call the start-game endpoint before guessing")

	return cmd
}
