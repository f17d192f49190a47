package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/craftedsignal/attack-excel/internal/attack"
	"github.com/craftedsignal/attack-excel/internal/seeder"
)

// newSeedCommand builds the seed subcommand: download the ATT&CK dataset
// for a domain and load it into a new workbook.
func newSeedCommand() *cobra.Command {
	var (
		domain          string
		noSubtechniques bool
		filterIn        []string
		filterOut       []string
	)

	cmd := &cobra.Command{
		Use:   "seed <outfile>",
		Short: "Download ATT&CK techniques into a new Excel workbook",
		Long: `Downloads the latest ATT&CK dataset for a domain and loads it into a new
Excel workbook in a relational format: sheet 'techniques' (techniqueID,
name, isSubtechnique, platforms, description), sheet
'techniquesToDataSources' (techniqueID, dataSourceName), and sheet
'dataSources' (dataSourceName).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outfile := args[0]

			d, err := attack.ParseDomain(domain)
			if err != nil {
				return err
			}
			if err := attack.ValidatePlatforms(d, filterIn); err != nil {
				return err
			}
			if err := attack.ValidatePlatforms(d, filterOut); err != nil {
				return err
			}

			opts := seeder.Options{
				IncludeSubtechniques: !noSubtechniques,
				Platforms:            attack.ComputePlatforms(d, filterIn, filterOut),
			}

			fmt.Printf("attack-excel: fetching %s techniques\n", d)
			n, err := seeder.Seed(cmd.Context(), attack.NewClient(), d, opts, outfile)
			if err != nil {
				return err
			}

			fmt.Printf("attack-excel: workbook created at %q with %d techniques\n", outfile, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", string(attack.Enterprise),
		"ATT&CK domain to download (enterprise-attack, mobile-attack, ics-attack)")
	cmd.Flags().BoolVar(&noSubtechniques, "no-subtechniques", false,
		"Exclude subtechniques from the workbook")
	cmd.Flags().StringSliceVar(&filterIn, "platformfilterin", nil,
		"Only include techniques covering one of these platforms")
	cmd.Flags().StringSliceVar(&filterOut, "platformfilterout", nil,
		"Exclude these platforms from the domain's platform set")
	cmd.MarkFlagsMutuallyExclusive("platformfilterin", "platformfilterout")

	return cmd
}
