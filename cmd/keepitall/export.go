package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/keepitall/keepitall/internal/cli"
	"github.com/keepitall/keepitall/internal/model"
)

func exportCmd() *cobra.Command {
	var (
		username string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's items to CSV",
		Long:  `Write the user's full persisted collection to a CSV file, or stdout with -o -.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, store, err := startSession(cmd.Context(), username)
			if err != nil {
				return err
			}
			defer closeStore(store)

			out := os.Stdout
			if output != "-" {
				f, createErr := os.Create(output)
				if createErr != nil {
					return fmt.Errorf("failed to create %s: %w", output, createErr)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			w := csv.NewWriter(out)
			if err := w.Write(csvHeader); err != nil {
				return fmt.Errorf("failed to write CSV header: %w", err)
			}

			items := svc.PersistedItems()
			for _, item := range items {
				record := []string{
					item.ID,
					item.Name,
					item.Description,
					item.Make,
					item.Model,
					item.SerialNumber,
					item.Comment,
					item.PhotoPath,
					strconv.FormatFloat(item.Value, 'f', 2, 64),
					item.PurchaseDate.Format(model.DateFormat),
				}
				if err := w.Write(record); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return err
			}

			if output != "-" {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("exported %d item(s) to %s", len(items), output)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "username that owns the collection (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
