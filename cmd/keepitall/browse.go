package main

import (
	"github.com/spf13/cobra"

	"github.com/keepitall/keepitall/internal/tui"
)

func browseCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse a collection interactively",
		Long: `Open the interactive home view: a grid of the user's items with live
search, date-range filtering, sorting, and two-press batch deletion.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, store, err := startSession(cmd.Context(), username)
			if err != nil {
				return err
			}
			defer closeStore(store)

			return tui.Run(svc)
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "username that owns the collection (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
