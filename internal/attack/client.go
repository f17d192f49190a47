package attack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL serves the MITRE CTI STIX bundles as plain JSON files,
// one per domain.
const DefaultBaseURL = "https://raw.githubusercontent.com/mitre/cti/master"

// Client fetches ATT&CK techniques from a STIX bundle endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client against the MITRE CTI dataset.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// stixBundle is the subset of a STIX 2 bundle we read.
type stixBundle struct {
	Objects []stixObject `json:"objects"`
}

type stixObject struct {
	Type               string          `json:"type"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Revoked            bool            `json:"revoked"`
	IsSubtechnique     bool            `json:"x_mitre_is_subtechnique"`
	Platforms          []string        `json:"x_mitre_platforms"`
	DataSources        []string        `json:"x_mitre_data_sources"`
	ExternalReferences []stixReference `json:"external_references"`
}

type stixReference struct {
	SourceName string `json:"source_name"`
	ExternalID string `json:"external_id"`
}

// Techniques downloads the domain's STIX bundle and converts every
// attack-pattern object into a Technique, in bundle order.
func (c *Client) Techniques(ctx context.Context, domain Domain) ([]Technique, error) {
	url := fmt.Sprintf("%s/%s/%s.json", c.BaseURL, domain, domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s techniques: %w", domain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s techniques: unexpected status %s", domain, resp.Status)
	}

	var bundle stixBundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing %s bundle: %w", domain, err)
	}

	var techniques []Technique
	for _, obj := range bundle.Objects {
		if obj.Type != "attack-pattern" {
			continue
		}
		t, err := obj.technique()
		if err != nil {
			return nil, fmt.Errorf("parsing %s bundle: %w", domain, err)
		}
		techniques = append(techniques, t)
	}
	return techniques, nil
}

// technique converts an attack-pattern object. The technique ID lives in the
// external reference whose source_name is mitre-attack.
func (o stixObject) technique() (Technique, error) {
	id := ""
	for _, ref := range o.ExternalReferences {
		if ref.SourceName == "mitre-attack" {
			id = ref.ExternalID
			break
		}
	}
	if id == "" {
		return Technique{}, fmt.Errorf("attack-pattern %q has no mitre-attack external ID", o.Name)
	}
	return Technique{
		ID:             id,
		Name:           o.Name,
		Description:    o.Description,
		IsSubtechnique: o.IsSubtechnique,
		Platforms:      o.Platforms,
		DataSources:    o.DataSources,
		Revoked:        o.Revoked,
	}, nil
}
