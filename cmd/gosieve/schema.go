package main

import (
	"github.com/spf13/cobra"

	"github.com/rmera/gosieve/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := config.Schema()
		if err != nil {
			return err
		}
		cmd.Println(string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
