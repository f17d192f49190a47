package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/craftedsignal/attack-excel/internal/attack"
	"github.com/craftedsignal/attack-excel/internal/layer"
)

// newLayerCommand builds the layer subcommand: read an annotated worksheet
// and emit a Navigator layer file.
func newLayerCommand() *cobra.Command {
	var (
		worksheet    string
		domain       string
		name         string
		description  string
		templatePath string
		filterIn     []string
		filterOut    []string
	)

	cmd := &cobra.Command{
		Use:   "layer <infile> <outfile>",
		Short: "Build an ATT&CK Navigator layer from an annotated worksheet",
		Long: `Reads a worksheet from the workbook at <infile>, looks for the columns
techniqueID (mandatory), color, enabled, score, and comment, and writes a
JSON file to <outfile> suitable for uploading as a layer in the ATT&CK
Navigator.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			infile, outfile := args[0], args[1]

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

			var overrides *layer.Overrides
			if templatePath != "" {
				overrides, err = layer.LoadOverrides(templatePath)
				if err != nil {
					return err
				}
			}

			doc, n, err := layer.Build(infile, worksheet, layer.Params{
				Name:        name,
				Description: description,
				Domain:      d,
				Platforms:   attack.ComputePlatforms(d, filterIn, filterOut),
				Overrides:   overrides,
			})
			if err != nil {
				return err
			}
			if err := doc.Write(outfile); err != nil {
				return err
			}

			fmt.Printf("attack-excel: layer file written to %q with %d techniques\n", outfile, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&worksheet, "worksheet", "techniques",
		"Worksheet within the workbook to read")
	cmd.Flags().StringVar(&domain, "domain", string(attack.Enterprise),
		"ATT&CK domain of the layer")
	cmd.Flags().StringVar(&name, "name", "attack-excel layer",
		"Name of the layer")
	cmd.Flags().StringVar(&description, "description", "",
		"Description of the layer")
	cmd.Flags().StringVar(&templatePath, "template", "",
		"YAML file overriding parts of the default layer template")
	cmd.Flags().StringSliceVar(&filterIn, "platformfilterin", nil,
		"Set filters.platforms to exactly these platforms")
	cmd.Flags().StringSliceVar(&filterOut, "platformfilterout", nil,
		"Set filters.platforms to the domain's platforms minus these")
	cmd.MarkFlagsMutuallyExclusive("platformfilterin", "platformfilterout")

	return cmd
}
