package attack

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBundle = `{
 "type": "bundle",
 "objects": [
  {
   "type": "x-mitre-tactic",
   "name": "Initial Access"
  },
  {
   "type": "attack-pattern",
   "name": "Phishing",
   "description": "Adversaries may send phishing messages.",
   "x_mitre_platforms": ["Windows", "macOS", "Linux"],
   "x_mitre_data_sources": ["Application Log: Application Log Content", "Network Traffic: Network Traffic Flow"],
   "external_references": [
    {"source_name": "mitre-attack", "external_id": "T1566"},
    {"source_name": "capec", "external_id": "CAPEC-98"}
   ]
  },
  {
   "type": "attack-pattern",
   "name": "Spearphishing Attachment",
   "x_mitre_is_subtechnique": true,
   "revoked": true,
   "x_mitre_platforms": ["Windows"],
   "external_references": [
    {"source_name": "mitre-attack", "external_id": "T1566.001"}
   ]
  }
 ]
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{BaseURL: srv.URL, HTTPClient: srv.Client()}
}

func TestClientTechniques(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/enterprise-attack/enterprise-attack.json", r.URL.Path)
		fmt.Fprint(w, testBundle)
	})

	techniques, err := c.Techniques(context.Background(), Enterprise)
	require.NoError(t, err)
	require.Len(t, techniques, 2, "only attack-pattern objects become techniques")

	phishing := techniques[0]
	assert.Equal(t, "T1566", phishing.ID, "ID comes from the mitre-attack reference")
	assert.Equal(t, "Phishing", phishing.Name)
	assert.False(t, phishing.IsSubtechnique)
	assert.False(t, phishing.Revoked)
	assert.Equal(t, []string{"Windows", "macOS", "Linux"}, phishing.Platforms)
	assert.Len(t, phishing.DataSources, 2)

	sub := techniques[1]
	assert.Equal(t, "T1566.001", sub.ID)
	assert.True(t, sub.IsSubtechnique)
	assert.True(t, sub.Revoked)
	assert.Empty(t, sub.Description)
}

func TestClientTechniques_HTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.Techniques(context.Background(), ICS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClientTechniques_MissingID(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"objects":[{"type":"attack-pattern","name":"Nameless","external_references":[{"source_name":"capec","external_id":"CAPEC-1"}]}]}`)
	})

	_, err := c.Techniques(context.Background(), Enterprise)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nameless")
}

func TestClientTechniques_BadJSON(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	})

	_, err := c.Techniques(context.Background(), Mobile)
	require.Error(t, err)
}
