package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStartCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Ask the scoring server to start a new game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.submitter.StartGame(cmd.Context()); err != nil {
				return fmt.Errorf("start game: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Game started successfully!")
			return nil
		},
	}
}
