package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRequestJSON = `{
	"precedentIds": [{"id": "prec-1"}],
	"explanation": "The clause lacks a damages cap.",
	"rule": "All liability clauses must cap damages."
}`

const validResponseJSON = `{
	"suggestions": ["Liability is capped at the fees paid."],
	"originalTexts": ["The Supplier is liable without limit."]
}`

func writePair(t *testing.T, reqDir, respDir, id, reqJSON, respJSON string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(reqDir, id+".json"), []byte(reqJSON), 0o644))
	if respJSON != "" {
		require.NoError(t, os.WriteFile(filepath.Join(respDir, id+".json"), []byte(respJSON), 0o644))
	}
}

func testDirs(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	reqDir := filepath.Join(root, "requests")
	respDir := filepath.Join(root, "responses")
	require.NoError(t, os.MkdirAll(reqDir, 0o755))
	require.NoError(t, os.MkdirAll(respDir, 0o755))
	return reqDir, respDir
}

func TestDiscover_ValidPairs(t *testing.T) {
	reqDir, respDir := testDirs(t)
	writePair(t, reqDir, respDir, "b-pair", validRequestJSON, validResponseJSON)
	writePair(t, reqDir, respDir, "a-pair", validRequestJSON, validResponseJSON)

	pairs, err := NewSource(reqDir, respDir, nil).Discover()
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	assert.Equal(t, "a-pair", pairs[0].ExternalID)
	assert.Equal(t, "b-pair", pairs[1].ExternalID)
	assert.Equal(t, "The clause lacks a damages cap.", pairs[0].Request.Explanation)
	assert.Len(t, pairs[0].Response.Suggestions, 1)
}

func TestDiscover_SkipsInvalidPairs(t *testing.T) {
	tests := []struct {
		name string
		req  string
		resp string
	}{
		{
			name: "missing explanation",
			req:  `{"rule": "Cap damages."}`,
			resp: validResponseJSON,
		},
		{
			name: "empty explanation",
			req:  `{"explanation": "", "rule": "Cap damages."}`,
			resp: validResponseJSON,
		},
		{
			name: "literal null explanation",
			req:  `{"explanation": "null", "rule": "Cap damages."}`,
			resp: validResponseJSON,
		},
		{
			name: "empty suggestions",
			req:  validRequestJSON,
			resp: `{"suggestions": [], "originalTexts": ["x"]}`,
		},
		{
			name: "suggestions all blank",
			req:  validRequestJSON,
			resp: `{"suggestions": ["", "  "], "originalTexts": ["x"]}`,
		},
		{
			name: "missing originalTexts",
			req:  validRequestJSON,
			resp: `{"suggestions": ["x"]}`,
		},
		{
			name: "request not JSON",
			req:  `{not json`,
			resp: validResponseJSON,
		},
		{
			name: "suggestions wrong type",
			req:  validRequestJSON,
			resp: `{"suggestions": "just one", "originalTexts": ["x"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqDir, respDir := testDirs(t)
			writePair(t, reqDir, respDir, "good", validRequestJSON, validResponseJSON)
			writePair(t, reqDir, respDir, "bad", tt.req, tt.resp)

			pairs, err := NewSource(reqDir, respDir, nil).Discover()
			require.NoError(t, err)

			require.Len(t, pairs, 1, "invalid pair must be skipped, not fatal")
			assert.Equal(t, "good", pairs[0].ExternalID)
		})
	}
}

func TestDiscover_RequestWithoutResponse(t *testing.T) {
	reqDir, respDir := testDirs(t)
	writePair(t, reqDir, respDir, "lonely", validRequestJSON, "")

	pairs, err := NewSource(reqDir, respDir, nil).Discover()
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestDiscover_MissingDirectory(t *testing.T) {
	pairs, err := NewSource(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil).Discover()
	require.NoError(t, err)
	assert.Empty(t, pairs)
}
