package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGenreCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genre",
		Short: "Manage genres books and articles can be filed under",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			for _, g := range e.genres.List() {
				fmt.Fprintln(a.out, g)
			}
			return nil
		},
	})
	cmd.AddCommand(newGenreChangeCommand(a, "add", "Add a genre"))
	cmd.AddCommand(newGenreChangeCommand(a, "delete", "Delete a genre; records filed under it are kept"))
	return cmd
}

func newGenreChangeCommand(a *app, op string, short string) *cobra.Command {
	return &cobra.Command{
		Use:   op + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			unsubscribe := e.genres.Subscribe(func(genres []string) {
				fmt.Fprintf(a.out, "genres: %s\n", strings.Join(genres, ", "))
			})
			defer unsubscribe()

			name := args[0]
			var changed bool
			if op == "add" {
				changed, err = e.genres.Add(name)
			} else {
				changed, err = e.genres.Delete(name)
			}
			if err != nil {
				return err
			}
			if !changed {
				if op == "add" {
					fmt.Fprintf(a.out, "genre '%s' not added: empty or already exists\n", strings.TrimSpace(name))
				} else {
					fmt.Fprintf(a.out, "genre '%s' not deleted: doesn't exist\n", name)
				}
			}
			return nil
		},
	}
}
