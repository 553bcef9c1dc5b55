package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
	"github.com/jwebster45206/cnv-trainer/pkg/state"
)

type failingStore struct {
	err error
}

func (f failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, f.err
}
func (f failingStore) Set(ctx context.Context, key, value string) error { return f.err }
func (f failingStore) Delete(ctx context.Context, key string) error     { return f.err }

func sampleSummary(name string, score int) ResultSummary {
	return ResultSummary{
		Name:           name,
		Score:          score,
		TotalQuestions: 2,
		KnowsCNV:       true,
		Answers: []state.AnswerRecord{
			{Scenario: "s1", Chosen: "c1", Feedback: "f1", Points: 10, Category: scenario.CNV},
			{Scenario: "s2", Chosen: "c2", Feedback: "f2", Points: 10, Category: scenario.CNV},
		},
	}
}

func TestResults_AppendAndList(t *testing.T) {
	ctx := context.Background()
	results := NewResults(NewMemoryStore(), testLogger())

	first, err := results.Append(ctx, sampleSummary("Ana", 20))
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err, "id should be a UUID")
	assert.False(t, first.CompletedAt.IsZero())

	_, err = results.Append(ctx, sampleSummary("Bruno", 5))
	require.NoError(t, err)

	list, err := results.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana", list[0].Name)
	assert.Equal(t, "Bruno", list[1].Name)
	assert.Equal(t, 20, list[0].Score)
	assert.Equal(t, 20, list[0].Possible())
	assert.InDelta(t, 100.0, list[0].Percentage(), 0.001)
	assert.Len(t, list[0].Answers, 2)
}

func TestResults_JSONShape(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	results := NewResults(store, testLogger())
	results.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	results.newID = func() string { return "fixed-id" }

	_, err := results.Append(ctx, sampleSummary("Ana", 20))
	require.NoError(t, err)

	raw, ok, err := store.Get(ctx, ResultsKey)
	require.NoError(t, err)
	require.True(t, ok)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "fixed-id", decoded[0]["id"])
	assert.Equal(t, "2024-05-01T12:00:00Z", decoded[0]["completedAt"])
	assert.Equal(t, float64(2), decoded[0]["totalQuestions"])
	assert.Equal(t, true, decoded[0]["knowsCNV"])

	answers := decoded[0]["answers"].([]any)
	first := answers[0].(map[string]any)
	assert.Equal(t, "s1", first["scenario"])
	assert.Equal(t, float64(10), first["points"])
}

func TestResults_CorruptBlobIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, ResultsKey, "[{broken"))
	results := NewResults(store, testLogger())

	list, err := results.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// appending over a corrupt blob starts a fresh list
	_, err = results.Append(ctx, sampleSummary("Ana", 20))
	require.NoError(t, err)
	list, err = results.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestResults_ClearAll(t *testing.T) {
	ctx := context.Background()
	results := NewResults(NewMemoryStore(), testLogger())
	_, err := results.Append(ctx, sampleSummary("Ana", 20))
	require.NoError(t, err)

	require.NoError(t, results.ClearAll(ctx))
	list, err := results.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResults_StoreFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	results := NewResults(failingStore{err: boom}, testLogger())

	_, err := results.Append(ctx, sampleSummary("Ana", 20))
	assert.ErrorIs(t, err, boom)
	_, err = results.List(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, results.ClearAll(ctx), boom)
}

func TestResults_OverRedis(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t)
	results := NewResults(s, testLogger())

	_, err := results.Append(ctx, sampleSummary("Ana", 20))
	require.NoError(t, err)
	list, err := results.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].Name)
}

func TestSummarise(t *testing.T) {
	assert.Equal(t, Stats{}, Summarise(nil))

	st := Summarise([]StoredResult{
		{Score: 20, KnowsCNV: true},
		{Score: 10},
		{Score: 0, KnowsCNV: true},
	})
	assert.Equal(t, 3, st.Count)
	assert.Equal(t, 2, st.KnowsCNV)
	assert.InDelta(t, 10.0, st.AverageScore, 0.001)
}

func TestSortByCompletedDesc(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := []StoredResult{
		{ID: "old", CompletedAt: base},
		{ID: "new", CompletedAt: base.Add(2 * time.Hour)},
		{ID: "mid", CompletedAt: base.Add(time.Hour)},
	}

	out := SortByCompletedDesc(in)
	ids := []string{out[0].ID, out[1].ID, out[2].ID}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
	assert.Equal(t, "old", in[0].ID, "input must not be reordered")
}

func TestCredentialStore(t *testing.T) {
	ctx := context.Background()
	creds := NewCredentialStore(NewMemoryStore(), testLogger())

	got, err := creds.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, creds.Save(ctx, "  secret  "))
	got, err = creds.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	require.NoError(t, creds.Forget(ctx))
	got, err = creds.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
