// Package seeder fetches ATT&CK techniques and writes them into a
// relational three-sheet workbook: techniques, techniquesToDataSources,
// and dataSources.
package seeder

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/craftedsignal/attack-excel/internal/attack"
)

// Worksheet names created by Seed.
const (
	SheetTechniques  = "techniques"
	SheetJoin        = "techniquesToDataSources"
	SheetDataSources = "dataSources"
)

// Source yields the ordered technique list for a domain. The production
// implementation is attack.Client.
type Source interface {
	Techniques(ctx context.Context, domain attack.Domain) ([]attack.Technique, error)
}

// Options controls which techniques are kept.
type Options struct {
	// IncludeSubtechniques keeps subtechnique rows when true.
	IncludeSubtechniques bool
	// Platforms is the active platform filter. A technique is kept only if
	// at least one of its platforms appears here.
	Platforms []string
}

// Seed fetches the domain's techniques, filters them, and writes the
// workbook to outfile. It returns the number of technique rows written.
func Seed(ctx context.Context, src Source, domain attack.Domain, opts Options, outfile string) (int, error) {
	techniques, err := src.Techniques(ctx, domain)
	if err != nil {
		return 0, fmt.Errorf("fetching techniques: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []string{SheetTechniques, SheetJoin, SheetDataSources} {
		if _, err := f.NewSheet(sheet); err != nil {
			return 0, fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
	}
	// Drop the implicit default sheet so the workbook holds exactly ours.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return 0, fmt.Errorf("removing default sheet: %w", err)
	}

	if err := writeRow(f, SheetTechniques, 1, "techniqueID", "name", "isSubtechnique", "platforms", "description"); err != nil {
		return 0, err
	}
	if err := writeRow(f, SheetJoin, 1, "techniqueID", "dataSourceName"); err != nil {
		return 0, err
	}
	if err := writeRow(f, SheetDataSources, 1, "dataSourceName"); err != nil {
		return 0, err
	}

	dataSources := make(map[string]bool)
	techRow, joinRow := 2, 2
	for _, t := range techniques {
		switch {
		case t.Revoked:
			log.Printf("seed: skipping %s (%s): revoked", t.ID, t.Name)
			continue
		case t.IsSubtechnique && !opts.IncludeSubtechniques:
			log.Printf("seed: skipping %s (%s): subtechnique", t.ID, t.Name)
			continue
		case !attack.Intersects(t.Platforms, opts.Platforms):
			log.Printf("seed: skipping %s (%s): no platform in filter", t.ID, t.Name)
			continue
		}

		err := writeRow(f, SheetTechniques, techRow,
			t.ID,
			t.Name,
			strconv.FormatBool(t.IsSubtechnique),
			strings.Join(t.Platforms, ", "),
			t.Description,
		)
		if err != nil {
			return 0, err
		}
		techRow++

		for _, ds := range t.DataSources {
			if err := writeRow(f, SheetJoin, joinRow, t.ID, ds); err != nil {
				return 0, err
			}
			joinRow++
			dataSources[ds] = true
		}
	}

	// The data-source dimension is an unordered set; emit it sorted so
	// repeated runs produce identical workbooks.
	names := make([]string, 0, len(dataSources))
	for ds := range dataSources {
		names = append(names, ds)
	}
	sort.Strings(names)
	for i, ds := range names {
		if err := writeRow(f, SheetDataSources, i+2, ds); err != nil {
			return 0, err
		}
	}

	if err := f.SaveAs(outfile); err != nil {
		return 0, fmt.Errorf("writing workbook: %w", err)
	}
	return techRow - 2, nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
