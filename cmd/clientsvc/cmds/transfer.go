package cmds

import (
	"clientsvc/internal/transfer"
	"clientsvc/internal/types"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	exportCmd = &cobra.Command{
		Use:   "export [file]",
		Short: "Write every client to a .json, .yaml or .yml file, zstd compressed when it ends in .zst",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			n, err := transfer.ExportFile(cmd.Context(), svc, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d clients\n", n)
			return nil
		},
	}
	importCmd = &cobra.Command{
		Use:   "import [file]",
		Short: "Create a client for every entry of an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			created, err := transfer.ImportFile(cmd.Context(), svc, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d clients\n", len(created))
			var be *types.BatchError
			if errors.As(err, &be) {
				return fmt.Errorf("entries %v were not imported: %w", be.FailedIndexes(), err)
			}
			return err
		},
	}
)
