package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newProvisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provisioning helpers for deployed resources",
	}
	cmd.AddCommand(c.newGenerateRDSPasswordCmd())
	return cmd
}

func (c *CLI) newGenerateRDSPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-rds-password --to-secret <db> <secretArn>",
		Short: "Set a fresh master password on an RDS instance and store it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			toSecret, _ := cmd.Flags().GetBool("to-secret")
			toS3, _ := cmd.Flags().GetBool("to-s3")
			switch {
			case toS3:
				return zerr.Wrap(domain.ErrConfiguration, "storing the password in s3 is not supported")
			case !toSecret:
				return zerr.Wrap(domain.ErrConfiguration, "a destination is required, use --to-secret")
			}
			return c.app.Provision(cmd.Context(), args[0], args[1])
		},
	}
	cmd.Flags().Bool("to-secret", false, "Store the password in an AWS secretsmanager secret")
	cmd.Flags().Bool("to-s3", false, "Store the password in an S3 object")
	return cmd
}
