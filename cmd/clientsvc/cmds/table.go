package cmds

import (
	"clientsvc/internal/backends"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	tableCmd = &cobra.Command{
		Use:   "table",
		Short: "Provision the client table",
	}
	tableCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create the table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.CreateTable(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "table ready")
			return nil
		},
	}
	tableDeleteCmd = &cobra.Command{
		Use:   "delete",
		Short: "Delete the table and every record in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.DeleteTable(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "table deleted")
			return nil
		},
	}
	tableClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete every record but keep the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			n, err := backends.Clear(cmd.Context(), store)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d clients\n", n)
			return err
		},
	}
)

func init() {
	tableCmd.AddCommand(tableCreateCmd)
	tableCmd.AddCommand(tableDeleteCmd)
	tableCmd.AddCommand(tableClearCmd)
}
