package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/keepitall/keepitall/internal/cli"
	"github.com/keepitall/keepitall/internal/common"
	"github.com/keepitall/keepitall/internal/model"
)

// csvHeader is the column layout used by both import and export.
var csvHeader = []string{"id", "name", "description", "make", "model", "serial_number", "comment", "photo_path", "value", "purchase_date"}

func importCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk-import items from a CSV file",
		Long: `Import items from a CSV export into a user's collection. Rows whose id
already exists in the collection are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, store, err := startSession(cmd.Context(), username)
			if err != nil {
				return err
			}
			defer closeStore(store)

			items, err := readItemsCSV(args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println(cli.FormatWarning("no items found in " + args[0]))
				return nil
			}

			bar := progressbar.NewOptions(len(items),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Importing items..."),
			)

			var imported, skipped int
			for _, item := range items {
				err := svc.AddItem(cmd.Context(), item)
				switch {
				case err == nil:
					imported++
				case errors.Is(err, common.ErrDuplicateItem):
					skipped++
				default:
					return err
				}
				_ = bar.Add(1)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("imported %d item(s), skipped %d duplicate(s)", imported, skipped)))
			fmt.Println(cli.FormatTotal(svc.TotalValue()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "username that owns the collection (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// readItemsCSV parses an item CSV file. The header row is required.
func readItemsCSV(path string) ([]model.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var items []model.Item
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		value, err := strconv.ParseFloat(record[8], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value %q: %w", line, record[8], err)
		}
		date, err := model.ParseDate(record[9])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id := record[0]
		if id == "" {
			id = uuid.NewString()
		}

		items = append(items, model.Item{
			ID:           id,
			Name:         record[1],
			Description:  record[2],
			Make:         record[3],
			Model:        record[4],
			SerialNumber: record[5],
			Comment:      record[6],
			PhotoPath:    record[7],
			Value:        value,
			PurchaseDate: date,
		})
	}

	return items, nil
}
