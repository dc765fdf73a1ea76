package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/herdcare/internal/catalog"
)

func newImportCmd(app *cliApp) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load goat types, vaccine types, goats, matings and farm events from YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := catalog.Load(args[0])
			if err != nil {
				return err
			}

			return app.withServices(cmd.Context(), func(s services) error {
				sum, err := catalog.NewImporter(s.store, app.logger.Named("catalog")).Import(cmd.Context(), doc)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, sum)
				}
				_, err = fmt.Fprintf(out, "Imported %d goat types (%d target weights), %d vaccine types, %d goats, %d breedings, %d farm events\n",
					sum.GoatTypes, sum.TargetWeights, sum.VaccineTypes, sum.Goats, sum.Breedings, sum.FarmEvents)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the import summary as JSON")
	return cmd
}
