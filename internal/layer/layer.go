// Package layer reads an analyst-annotated worksheet and assembles an
// ATT&CK Navigator layer document from it.
package layer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/craftedsignal/attack-excel/internal/attack"
)

// ErrMissingTechniqueID is returned when the worksheet's header row has no
// techniqueID column. The other recognized columns are optional; this one
// is not, since a layer entry without it is meaningless to Navigator.
var ErrMissingTechniqueID = errors.New("worksheet has no techniqueID column")

// Recognized header names. Matching is exact and case-sensitive; any other
// header is ignored.
const (
	HeaderTechniqueID = "techniqueID"
	HeaderColor       = "color"
	HeaderEnabled     = "enabled"
	HeaderScore       = "score"
	HeaderComment     = "comment"
)

// Columns maps each recognized header to its zero-based column index, or -1
// when the header is absent from the sheet.
type Columns struct {
	TechniqueID int
	Color       int
	Enabled     int
	Score       int
	Comment     int
}

// resolveColumns scans the header row for the recognized names.
func resolveColumns(header []string) Columns {
	cols := Columns{TechniqueID: -1, Color: -1, Enabled: -1, Score: -1, Comment: -1}
	for i, name := range header {
		switch name {
		case HeaderTechniqueID:
			cols.TechniqueID = i
		case HeaderColor:
			cols.Color = i
		case HeaderEnabled:
			cols.Enabled = i
		case HeaderScore:
			cols.Score = i
		case HeaderComment:
			cols.Comment = i
		}
	}
	return cols
}

// Entry is one technique row of the layer. A field is serialized only when
// its column exists in the source sheet, and serializes as null when the
// cell was empty.
type Entry struct {
	TechniqueID interface{}
	Color       interface{}
	Enabled     interface{}
	Score       interface{}
	Comment     interface{}

	cols Columns
}

// MarshalJSON emits exactly the keys whose columns are present, in a fixed
// order with techniqueID first.
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	fields := []struct {
		key     string
		present bool
		value   interface{}
	}{
		{HeaderTechniqueID, e.cols.TechniqueID >= 0, e.TechniqueID},
		{HeaderColor, e.cols.Color >= 0, e.Color},
		{HeaderEnabled, e.cols.Enabled >= 0, e.Enabled},
		{HeaderScore, e.cols.Score >= 0, e.Score},
		{HeaderComment, e.cols.Comment >= 0, e.Comment},
	}
	first := true
	for _, f := range fields {
		if !f.present {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Params are the document fields supplied by the caller.
type Params struct {
	Name        string
	Description string
	Domain      attack.Domain
	// Platforms is the computed platform filter rendered into
	// filters.platforms.
	Platforms []string
	// Overrides optionally replaces parts of the default template.
	Overrides *Overrides
}

// Build reads the worksheet from the workbook at infile and assembles a
// layer document. It returns the document and the number of technique rows.
func Build(infile, worksheet string, p Params) (*Document, int, error) {
	f, err := excelize.OpenFile(infile)
	if err != nil {
		return nil, 0, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(worksheet)
	if err != nil {
		return nil, 0, fmt.Errorf("locating worksheet %q: %w", worksheet, err)
	}
	if idx < 0 {
		return nil, 0, fmt.Errorf("workbook has no worksheet %q", worksheet)
	}

	rows, err := f.GetRows(worksheet)
	if err != nil {
		return nil, 0, fmt.Errorf("reading worksheet %q: %w", worksheet, err)
	}

	var cols Columns
	if len(rows) > 0 {
		cols = resolveColumns(rows[0])
	} else {
		cols.TechniqueID = -1
	}
	if cols.TechniqueID < 0 {
		return nil, 0, fmt.Errorf("worksheet %q: %w", worksheet, ErrMissingTechniqueID)
	}

	// A header-only sheet is a valid empty layer; techniques must serialize
	// as [], not null.
	entries := []Entry{}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		entries = append(entries, Entry{
			TechniqueID: stringCell(row, cols.TechniqueID),
			Color:       stringCell(row, cols.Color),
			Enabled:     boolCell(row, cols.Enabled),
			Score:       numberCell(row, cols.Score),
			Comment:     stringCell(row, cols.Comment),
			cols:        cols,
		})
	}

	platforms := p.Platforms
	if platforms == nil {
		platforms = []string{}
	}

	doc := NewDocument()
	p.Overrides.Apply(doc)
	doc.Name = p.Name
	doc.Domain = string(p.Domain)
	doc.Description = p.Description
	doc.Filters = Filters{Platforms: platforms}
	doc.Techniques = entries

	return doc, len(entries), nil
}

// Write serializes the document as formatted JSON.
func (d *Document) Write(outfile string) error {
	data, err := json.MarshalIndent(d, "", " ")
	if err != nil {
		return fmt.Errorf("marshaling layer: %w", err)
	}
	if err := os.WriteFile(outfile, data, 0o644); err != nil {
		return fmt.Errorf("writing layer: %w", err)
	}
	return nil
}

// cell returns the raw cell text, or "" past the row's ragged end.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// stringCell passes the cell text through, empty cells as null.
func stringCell(row []string, idx int) interface{} {
	s := cell(row, idx)
	if s == "" {
		return nil
	}
	return s
}

// boolCell produces a JSON boolean when the cell holds one (Excel boolean
// cells read back as TRUE/FALSE), otherwise the raw text.
func boolCell(row []string, idx int) interface{} {
	s := cell(row, idx)
	if s == "" {
		return nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// numberCell produces a JSON number when the cell holds one, otherwise the
// raw text.
func numberCell(row []string, idx int) interface{} {
	s := cell(row, idx)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
