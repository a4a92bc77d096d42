package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/clausegrade/clausegrade/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *EvaluationStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "evaluations.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	return s
}

func sampleRequest(explanation string) models.SuggestionRequest {
	return models.SuggestionRequest{
		PrecedentIDs: []models.PrecedentID{{ID: "prec-1"}},
		Explanation:  explanation,
		Rule:         "Cap all damages.",
	}
}

func sampleResponse(text string) models.SuggestionResponse {
	return models.SuggestionResponse{
		Suggestions:   []string{text},
		OriginalTexts: []string{"Unlimited liability."},
	}
}

func TestStoreAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	scores := models.EvaluationResult{ComplianceScore: 7, MinimalEditsScore: 8, ExampleUsageScore: 6, OverallScore: 7.0}
	id, ok := s.Store(ctx, "req-1", sampleRequest("missing cap"), sampleResponse("capped"), scores)
	require.True(t, ok)
	require.NotZero(t, id)

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "req-1", rec.RequestID)
	assert.Equal(t, scores, rec.Scores)
	assert.Equal(t, "missing cap", rec.Request.Explanation)
	assert.Equal(t, []string{"capped"}, rec.Response.Suggestions)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestStore_UpsertConvergesToOneRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, ok := s.Store(ctx, "req-1", sampleRequest("v1"), sampleResponse("s1"),
		models.EvaluationResult{ComplianceScore: 1})
	require.True(t, ok)

	second, ok := s.Store(ctx, "req-1", sampleRequest("v2"), sampleResponse("s2"),
		models.EvaluationResult{ComplianceScore: 9})
	require.True(t, ok)
	assert.Equal(t, first, second, "upsert must return the existing identifier")

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "v2", records[0].Request.Explanation)
	assert.Equal(t, 9.0, records[0].Scores.ComplianceScore)
}

func TestStore_ConcurrentSameKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Store(ctx, "req-1", sampleRequest("racing"), sampleResponse("s"), models.EvaluationResult{})
		}()
	}
	wg.Wait()

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1, "concurrent stores for one request_id must not duplicate rows")
}

func TestListAll_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"req-a", "req-b", "req-c"} {
		_, ok := s.Store(ctx, id, sampleRequest("e"), sampleResponse("s"), models.EvaluationResult{})
		require.True(t, ok)
	}

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "req-c", records[0].RequestID)
	assert.Equal(t, "req-b", records[1].RequestID)
	assert.Equal(t, "req-a", records[2].RequestID)
	assert.Greater(t, records[0].ID, records[1].ID)
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "evaluations.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	_, ok := s.Store(context.Background(), "req-1", sampleRequest("e"), sampleResponse("s"), models.EvaluationResult{})
	assert.True(t, ok)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evaluations.db")

	s1, err := Open(path, nil)
	require.NoError(t, err)
	_, ok := s1.Store(context.Background(), "req-1", sampleRequest("e"), sampleResponse("s"), models.EvaluationResult{})
	require.True(t, ok)
	require.NoError(t, s1.Close())

	s2, err := Open(path, nil)
	require.NoError(t, err)
	defer s2.Close() //nolint:errcheck

	records, err := s2.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1, "reopening must not recreate or clear the schema")
}
