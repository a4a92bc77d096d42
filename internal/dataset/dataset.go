// Package dataset discovers suggestion pairs on disk. A pair is a request
// file data/suggestion_requests/<uuid>.json with a matching response file
// under data/suggestion_responses/. Each side is validated against an
// embedded JSON schema before it is handed to the pipeline; invalid pairs
// are skipped with a logged reason, never fatal.
package dataset

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/clausegrade/clausegrade/internal/models"
)

// Default pair directories, relative to the working directory.
const (
	DefaultRequestDir  = "data/suggestion_requests"
	DefaultResponseDir = "data/suggestion_responses"
)

//go:embed schemas/request.schema.json schemas/response.schema.json
var schemaFS embed.FS

var (
	requestSchema  = mustCompile("schemas/request.schema.json")
	responseSchema = mustCompile("schemas/response.schema.json")
)

func mustCompile(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("dataset: reading %s: %v", name, err))
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("dataset: parsing %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("dataset: adding %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("dataset: compiling %s: %v", name, err))
	}
	return schema
}

// Source reads suggestion pairs from a pair of directories.
type Source struct {
	requestDir  string
	responseDir string
	logger      *slog.Logger
}

// NewSource creates a Source over the given directories. Empty directories
// fall back to the defaults.
func NewSource(requestDir, responseDir string, logger *slog.Logger) *Source {
	if requestDir == "" {
		requestDir = DefaultRequestDir
	}
	if responseDir == "" {
		responseDir = DefaultResponseDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{requestDir: requestDir, responseDir: responseDir, logger: logger}
}

// Discover returns every valid pair, ordered by external identifier.
// Requests without a matching response, unreadable files, and pairs that
// fail validation are skipped with a logged reason. A missing request
// directory yields an empty result, not an error.
func (s *Source) Discover() ([]models.SuggestionPair, error) {
	entries, err := os.ReadDir(s.requestDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %q: %w", s.requestDir, err)
	}

	var pairs []models.SuggestionPair
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		externalID := strings.TrimSuffix(e.Name(), ".json")
		responsePath := filepath.Join(s.responseDir, e.Name())
		if _, err := os.Stat(responsePath); err != nil {
			s.logger.Debug("request has no matching response, skipping", "id", externalID)
			continue
		}

		pair, err := s.loadPair(externalID, filepath.Join(s.requestDir, e.Name()), responsePath)
		if err != nil {
			s.logger.Warn("skipping invalid pair", "id", externalID, "error", err)
			continue
		}
		pairs = append(pairs, *pair)
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ExternalID < pairs[j].ExternalID })
	return pairs, nil
}

func (s *Source) loadPair(externalID, requestPath, responsePath string) (*models.SuggestionPair, error) {
	var req models.SuggestionRequest
	if err := loadValidated(requestPath, requestSchema, &req); err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	var resp models.SuggestionResponse
	if err := loadValidated(responsePath, responseSchema, &resp); err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}

	pair := models.SuggestionPair{ExternalID: externalID, Request: req, Response: resp}
	// The schemas catch shape problems; the model-level checks also reject
	// whitespace and literal "null" content.
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	return &pair, nil
}

// loadValidated reads a JSON document, checks it against the schema, and
// decodes it into out.
func loadValidated(path string, schema *jsonschema.Schema, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return json.Unmarshal(data, out)
}
