package layer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/craftedsignal/attack-excel/internal/attack"
)

// writeWorkbook creates a single-sheet fixture workbook and returns its path.
func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	if sheet != "Sheet1" {
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// docJSON round-trips the document through its JSON encoding.
func docJSON(t *testing.T, doc *Document) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestBuild_RoundTrip(t *testing.T) {
	in := writeWorkbook(t, "techniques", [][]interface{}{
		{"techniqueID", "color", "enabled", "score", "comment", "ignored"},
		{"T1566", "#ff0000", true, 42, "phishing coverage weak", "x"},
		{"T1059", "", false, 0, "", "y"},
		{"T1003", "#00ff00", nil, nil, "done"},
	})

	doc, n, err := Build(in, "techniques", Params{
		Name:        "Test",
		Description: "",
		Domain:      attack.Enterprise,
		Platforms:   attack.ComputePlatforms(attack.Enterprise, nil, []string{"PRE"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	m := docJSON(t, doc)
	assert.Equal(t, "Test", m["name"])
	assert.Equal(t, "enterprise-attack", m["domain"])
	assert.Equal(t, "", m["description"])

	// Boolean-like layer fields stay literal strings for Navigator.
	assert.Equal(t, "false", m["hideDisabled"])
	assert.Equal(t, "true", m["selectTechniquesAcrossTactics"])

	filters := m["filters"].(map[string]interface{})
	platforms := filters["platforms"].([]interface{})
	assert.Len(t, platforms, len(attack.Enterprise.Platforms())-1)
	assert.NotContains(t, platforms, "PRE")

	techniques := m["techniques"].([]interface{})
	require.Len(t, techniques, 3)

	first := techniques[0].(map[string]interface{})
	assert.Equal(t, "T1566", first["techniqueID"])
	assert.Equal(t, "#ff0000", first["color"])
	assert.Equal(t, true, first["enabled"], "boolean cell becomes a JSON boolean")
	assert.Equal(t, 42.0, first["score"], "numeric cell becomes a JSON number")
	assert.Equal(t, "phishing coverage weak", first["comment"])
	assert.NotContains(t, first, "ignored", "unrecognized headers are dropped")

	// Every entry carries exactly the recognized headers present in the
	// sheet; empty cells come through as null.
	for _, raw := range techniques {
		entry := raw.(map[string]interface{})
		require.Len(t, entry, 5)
		for _, key := range []string{"techniqueID", "color", "enabled", "score", "comment"} {
			assert.Contains(t, entry, key)
		}
	}
	second := techniques[1].(map[string]interface{})
	assert.Nil(t, second["color"])
	assert.Nil(t, second["comment"])
	third := techniques[2].(map[string]interface{})
	assert.Nil(t, third["enabled"])
	assert.Nil(t, third["score"])
}

func TestBuild_SubsetOfColumns(t *testing.T) {
	in := writeWorkbook(t, "techniques", [][]interface{}{
		{"techniqueID", "score"},
		{"T1566", 10},
	})

	doc, n, err := Build(in, "techniques", Params{Domain: attack.Enterprise})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m := docJSON(t, doc)
	entry := m["techniques"].([]interface{})[0].(map[string]interface{})
	assert.Len(t, entry, 2, "absent columns produce no keys at all")
	assert.Equal(t, "T1566", entry["techniqueID"])
	assert.Equal(t, 10.0, entry["score"])
}

func TestBuild_HeaderOnlySheet(t *testing.T) {
	in := writeWorkbook(t, "techniques", [][]interface{}{
		{"techniqueID", "color", "score"},
	})

	doc, n, err := Build(in, "techniques", Params{Domain: attack.Enterprise})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	m := docJSON(t, doc)
	require.NotNil(t, m["techniques"], "an empty layer serializes techniques as [], not null")
	assert.Empty(t, m["techniques"].([]interface{}))
	require.NotNil(t, m["filters"].(map[string]interface{})["platforms"],
		"an unset platform filter serializes as [], not null")
}

func TestBuild_MissingTechniqueIDColumn(t *testing.T) {
	in := writeWorkbook(t, "techniques", [][]interface{}{
		{"color", "score"},
		{"#ff0000", 10},
	})

	_, _, err := Build(in, "techniques", Params{Domain: attack.Enterprise})
	require.ErrorIs(t, err, ErrMissingTechniqueID)
}

func TestBuild_MissingWorksheet(t *testing.T) {
	in := writeWorkbook(t, "techniques", [][]interface{}{
		{"techniqueID"},
	})

	_, _, err := Build(in, "nope", Params{Domain: attack.Enterprise})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestBuild_MissingWorkbook(t *testing.T) {
	_, _, err := Build(filepath.Join(t.TempDir(), "absent.xlsx"), "techniques", Params{})
	require.Error(t, err)
}

func TestDocumentWrite(t *testing.T) {
	in := writeWorkbook(t, "techniques", [][]interface{}{
		{"techniqueID", "comment"},
		{"T1110", "brute force"},
	})

	doc, _, err := Build(in, "techniques", Params{
		Name:      "Write Test",
		Domain:    attack.Mobile,
		Platforms: attack.Mobile.Platforms(),
	})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "layer.json")
	require.NoError(t, doc.Write(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	// The output must keep the string-typed pseudo-booleans verbatim.
	assert.Contains(t, string(data), `"hideDisabled": "false"`)
	assert.Contains(t, string(data), `"showName": "true"`)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "mobile-attack", m["domain"])
	versions := m["versions"].(map[string]interface{})
	assert.Equal(t, "4.2", versions["navigator"])
}
