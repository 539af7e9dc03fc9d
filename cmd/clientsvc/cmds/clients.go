package cmds

import (
	"clientsvc/internal/query"
	"clientsvc/internal/types"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clientsCmd = &cobra.Command{
		Use:   "clients",
		Short: "Manage client records",
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List clients, optionally filtered by a JMESPath expression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			records, err := svc.FindAll(cmd.Context())
			if err != nil {
				return err
			}
			records, err = query.Select(viper.GetString("filter"), records)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), viper.GetString("output"), records)
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [id]",
		Short: "Print one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			record, err := svc.FindByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if expr := viper.GetString("query"); expr != "" {
				v, err := query.EvalString(expr, record)
				if err != nil {
					return err
				}
				if v == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "null")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), *v)
				return nil
			}
			return printRecords(cmd.OutOrStdout(), viper.GetString("output"), record)
		},
	}
	createCmd = &cobra.Command{
		Use:   "create [json]",
		Short: `Create a client, e.g. create '{"fullName":"Alice Smith"}'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate, err := parseRecord(args[0])
			if err != nil {
				return err
			}
			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			record, err := svc.Create(cmd.Context(), candidate)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), viper.GetString("output"), record)
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [id] [json]",
		Short: "Set the given fields of a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseRecord(args[1])
			if err != nil {
				return err
			}
			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			record, err := svc.Update(cmd.Context(), args[0], updates)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), viper.GetString("output"), record)
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			if _, err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted successfully")
			return nil
		},
	}
)

func init() {
	clientsCmd.PersistentFlags().StringP("output", "o", "json", "output format (json, yaml)")
	getCmd.Flags().String("query", "", "JMESPath expression printed instead of the whole client, e.g. \"fullName\"")
	listCmd.Flags().String("filter", "", "JMESPath expression a client must match, e.g. \"isActive\"")

	clientsCmd.AddCommand(listCmd)
	clientsCmd.AddCommand(getCmd)
	clientsCmd.AddCommand(createCmd)
	clientsCmd.AddCommand(updateCmd)
	clientsCmd.AddCommand(deleteCmd)
}

func parseRecord(s string) (types.Record, error) {
	var r types.Record
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, fmt.Errorf("invalid client json: %w", err)
	}
	return r, nil
}
