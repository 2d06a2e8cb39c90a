package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNeedsRollbackConfirmation = errors.New("refusing to roll back the schema without --yes")

func (c *CLI) dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance for development",
	}
	cmd.AddCommand(c.dbDownCmd())
	return cmd
}

func (c *CLI) dbDownCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the newest table migration",
		Long: `Rolls back the newest table migration of the sqlite or postgres
database. Stored push-ups and settings are dropped with it. Refused when
APP_ENV is production.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNeedsRollbackConfirmation
			}

			err := c.app.RollbackSchema(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Rolled back one migration.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm dropping stored data")
	return cmd
}
