package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/keepitall/keepitall/internal/cli"
	"github.com/keepitall/keepitall/internal/collection"
	"github.com/keepitall/keepitall/internal/model"
	"github.com/keepitall/keepitall/internal/storage"
)

func itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage inventory items",
		Long:  `List, add, view, search, filter, sort, and delete inventory items.`,
	}

	cmd.PersistentFlags().StringP("user", "u", "", "username that owns the collection (required)")
	_ = cmd.MarkPersistentFlagRequired("user")

	cmd.AddCommand(listItemsCmd())
	cmd.AddCommand(addItemCmd())
	cmd.AddCommand(showItemCmd())
	cmd.AddCommand(deleteItemsCmd())
	cmd.AddCommand(searchItemsCmd())
	cmd.AddCommand(filterItemsCmd())
	cmd.AddCommand(sortItemsCmd())

	return cmd
}

func listItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all items",
		Long:  `Display every item in the user's collection with the running total value.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, store, err := sessionFromFlags(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			printItems(svc)
			return nil
		},
	}
}

func addItemCmd() *cobra.Command {
	var (
		description  string
		itemMake     string
		itemModel    string
		serialNumber string
		comment      string
		photoPath    string
		itemID       string
		value        float64
		purchased    string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new item",
		Long:  `Add an item to the collection and sync it to the store.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, store, err := sessionFromFlags(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			date, err := model.ParseDate(purchased)
			if err != nil {
				return err
			}
			if itemID == "" {
				itemID = uuid.NewString()
			}

			item := model.Item{
				ID:           itemID,
				Name:         args[0],
				Description:  description,
				Make:         itemMake,
				Model:        itemModel,
				SerialNumber: serialNumber,
				Comment:      comment,
				PhotoPath:    photoPath,
				Value:        value,
				PurchaseDate: date,
			}

			if err := svc.AddItem(cmd.Context(), item); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("added %q (%s)", item.Name, item.ID)))
			fmt.Println(cli.FormatTotal(svc.TotalValue()))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&value, "value", "v", 0, "monetary value")
	cmd.Flags().StringVarP(&purchased, "date", "d", "", "purchase date (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&description, "description", "", "item description")
	cmd.Flags().StringVar(&itemMake, "make", "", "manufacturer")
	cmd.Flags().StringVar(&itemModel, "model", "", "model name")
	cmd.Flags().StringVar(&serialNumber, "serial", "", "serial number")
	cmd.Flags().StringVar(&comment, "comment", "", "free-text comment")
	cmd.Flags().StringVar(&photoPath, "photo", "", "path to a photo of the item")
	cmd.Flags().StringVar(&itemID, "id", "", "explicit item id (generated when omitted)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func showItemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show an item's properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("user")
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			owner, err := store.GetUserByName(ctx, username)
			if err != nil {
				return err
			}
			item, err := store.GetItemByID(ctx, owner.ID, args[0])
			if err != nil {
				return err
			}

			lines := []string{
				fmt.Sprintf("Description:   %s", item.Description),
				fmt.Sprintf("Make:          %s", item.Make),
				fmt.Sprintf("Model:         %s", item.Model),
				fmt.Sprintf("Serial number: %s", item.SerialNumber),
				fmt.Sprintf("Value:         $%.2f", item.Value),
				fmt.Sprintf("Purchased:     %s", item.PurchaseDate.Format(model.DateFormat)),
				fmt.Sprintf("Comment:       %s", item.Comment),
			}
			if item.PhotoPath != "" {
				lines = append(lines, fmt.Sprintf("Photo:         %s", item.PhotoPath))
			}
			fmt.Println(cli.RenderBox(item.Name, strings.Join(lines, "\n")))
			return nil
		},
	}
}

func deleteItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>...",
		Short: "Delete one or more items",
		Long: `Delete items by id as one batch. Ids not present in the collection are
skipped without aborting the batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, store, err := sessionFromFlags(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			before := len(svc.PersistedItems())

			svc.EnterDeleteMode()
			for _, id := range args {
				if err := svc.ToggleSelection(id); err != nil {
					return err
				}
			}
			if err := svc.CommitDelete(cmd.Context()); err != nil {
				fmt.Println(cli.FormatWarning(err.Error()))
			}

			removed := before - len(svc.PersistedItems())
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("deleted %d item(s)", removed)))
			fmt.Println(cli.FormatTotal(svc.TotalValue()))
			return nil
		},
	}
}

func searchItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search items by text",
		Long:  `Show the items whose name, description, make, model, or comment contains the query.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, store, err := sessionFromFlags(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			svc.Search(args[0])
			printItems(svc)
			return nil
		},
	}
}

func filterItemsCmd() *cobra.Command {
	var startStr, endStr string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter items by purchase-date range",
		Long:  `Show the items purchased within [start, end], bounds inclusive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, store, err := sessionFromFlags(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			if startStr == "" || endStr == "" {
				// Missing bound: warn and show the unfiltered view.
				fmt.Println(cli.FormatWarning("please select both start and end dates"))
				printItems(svc)
				return nil
			}

			start, err := model.ParseDate(startStr)
			if err != nil {
				return err
			}
			end, err := model.ParseDate(endStr)
			if err != nil {
				return err
			}

			if err := svc.FilterByDateRange(&start, &end); err != nil {
				return err
			}
			printItems(svc)
			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endStr, "end", "", "end date (YYYY-MM-DD)")

	return cmd
}

func sortItemsCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "sort <name|value|date>",
		Short: "Sort items",
		Long:  `Show the collection ordered by the given key. The sort is stable.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := model.ParseSortKey(args[0])
			if err != nil {
				return err
			}
			dir, err := model.ParseSortDirection(direction)
			if err != nil {
				return err
			}

			svc, store, err := sessionFromFlags(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			svc.Sort(key, dir)
			printItems(svc)
			return nil
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "asc", "sort direction (asc, desc)")

	return cmd
}

// sessionFromFlags builds a collection service for the --user flag.
func sessionFromFlags(cmd *cobra.Command) (*collection.Service, *storage.SQLiteStorage, error) {
	username, _ := cmd.Flags().GetString("user")
	return startSession(cmd.Context(), username)
}

func closeStore(store interface{ Close() error }) {
	if err := store.Close(); err != nil {
		slog.Error("failed to close storage", "error", err)
	}
}

// printItems renders the currently displayed collection as a table, with the
// recomputed total underneath.
func printItems(svc *collection.Service) {
	items := svc.Items()
	if len(items) == 0 {
		fmt.Println(cli.InfoStyle.Render("No items to show."))
		fmt.Println(cli.FormatTotal(svc.TotalValue()))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Name"),
		cli.HeaderStyle.Render("Make/Model"),
		cli.HeaderStyle.Render("Value"),
		cli.HeaderStyle.Render("Purchased"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 8),
		strings.Repeat("-", 20),
		strings.Repeat("-", 16),
		strings.Repeat("-", 10),
		strings.Repeat("-", 10))

	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%s\n",
			shortID(item.ID),
			item.Name,
			strings.TrimSpace(item.Make+" "+item.Model),
			item.Value,
			item.PurchaseDate.Format(model.DateFormat))
	}
	_ = w.Flush()

	fmt.Println(cli.FormatTotal(svc.TotalValue()))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
