package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keepitall/keepitall/internal/cli"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
		Long:  `Register, list, and remove the users whose collections this database holds.`,
	}

	cmd.AddCommand(addUserCmd())
	cmd.AddCommand(listUsersCmd())
	cmd.AddCommand(deleteUserCmd())

	return cmd
}

func addUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <username>",
		Short: "Register a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			user, err := store.CreateUser(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("registered %q (%s)", user.Name, user.ID)))
			return nil
		},
	}
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			users, err := store.GetAllUsers(ctx)
			if err != nil {
				return fmt.Errorf("failed to get users: %w", err)
			}

			if len(users) == 0 {
				fmt.Println(cli.InfoStyle.Render("No users found. Use 'keepitall users add' to register one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Items"),
				cli.HeaderStyle.Render("Since"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 16),
				strings.Repeat("-", 6),
				strings.Repeat("-", 10))

			for _, user := range users {
				count, countErr := store.GetItemCount(ctx, user.ID)
				if countErr != nil {
					return countErr
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", user.Name, count, user.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}

func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Remove a user and all of their items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.DeleteUser(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("removed %q and their items", args[0])))
			return nil
		},
	}
}
