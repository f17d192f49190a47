// attack-excel converts between a spreadsheet representation of MITRE
// ATT&CK technique data and the JSON layer format consumed by the ATT&CK
// Navigator.
//
// Usage:
//
//	attack-excel seed techniques.xlsx --domain enterprise-attack
//	attack-excel layer techniques.xlsx layer.json --name "Control gaps"
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "attack-excel",
		Short:         "Excel workbooks in, ATT&CK Navigator layers out",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: usage to stderr, nonzero exit.
			cmd.SetOut(cmd.ErrOrStderr())
			_ = cmd.Usage()
			return errors.New("a subcommand is required")
		},
	}

	root.AddCommand(newSeedCommand())
	root.AddCommand(newLayerCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
