package attack

// Technique is a single ATT&CK technique as fetched from the dataset.
// Immutable once built; the seeder filters and writes but never edits.
type Technique struct {
	ID             string
	Name           string
	Description    string
	IsSubtechnique bool
	Platforms      []string
	DataSources    []string
	Revoked        bool
}
