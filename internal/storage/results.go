package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/cnv-trainer/pkg/scoring"
	"github.com/jwebster45206/cnv-trainer/pkg/state"
)

// ResultsKey is the store key holding the results list.
const ResultsKey = "cnv-user-results"

// ResultSummary is what a finished session hands over for persistence.
type ResultSummary struct {
	Name           string
	Score          int
	TotalQuestions int
	KnowsCNV       bool
	Answers        []state.AnswerRecord
}

// StoredResult is one persisted completed session.
type StoredResult struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Score          int                  `json:"score"`
	TotalQuestions int                  `json:"totalQuestions"`
	CompletedAt    time.Time            `json:"completedAt"`
	KnowsCNV       bool                 `json:"knowsCNV"`
	Answers        []state.AnswerRecord `json:"answers"`
}

// Possible is the maximum score the result could have reached.
func (r StoredResult) Possible() int {
	return scoring.Possible(r.TotalQuestions)
}

// Percentage is the score as a share of Possible, 0 to 100.
func (r StoredResult) Percentage() float64 {
	return scoring.Percentage(r.Score, r.Possible())
}

// Results appends and lists completed sessions under ResultsKey.
type Results struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewResults(store Store, logger *slog.Logger) *Results {
	return &Results{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Append stores summary with a fresh id and completion time.
func (r *Results) Append(ctx context.Context, summary ResultSummary) (StoredResult, error) {
	results, err := r.List(ctx)
	if err != nil {
		return StoredResult{}, err
	}

	answers := slices.Clone(summary.Answers)
	if answers == nil {
		answers = []state.AnswerRecord{}
	}
	res := StoredResult{
		ID:             r.newID(),
		Name:           summary.Name,
		Score:          summary.Score,
		TotalQuestions: summary.TotalQuestions,
		CompletedAt:    r.now().UTC(),
		KnowsCNV:       summary.KnowsCNV,
		Answers:        answers,
	}
	results = append(results, res)

	data, err := json.Marshal(results)
	if err != nil {
		return StoredResult{}, fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := r.store.Set(ctx, ResultsKey, string(data)); err != nil {
		return StoredResult{}, fmt.Errorf("failed to save results: %w", err)
	}

	r.logger.Info("Result saved", "id", res.ID, "score", res.Score, "total_questions", res.TotalQuestions)
	return res, nil
}

// List returns results oldest first. An undecodable blob reads as empty.
func (r *Results) List(ctx context.Context) ([]StoredResult, error) {
	raw, ok, err := r.store.Get(ctx, ResultsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	if !ok || raw == "" {
		return []StoredResult{}, nil
	}

	var results []StoredResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		r.logger.Warn("Stored results are corrupt, treating as empty", "error", err)
		return []StoredResult{}, nil
	}
	if results == nil {
		results = []StoredResult{}
	}
	return results, nil
}

// ClearAll removes every stored result.
func (r *Results) ClearAll(ctx context.Context) error {
	if err := r.store.Delete(ctx, ResultsKey); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}
	r.logger.Info("Results cleared")
	return nil
}

// Stats aggregates a result list.
type Stats struct {
	Count        int
	AverageScore float64
	KnowsCNV     int
}

// Summarise computes Stats over results.
func Summarise(results []StoredResult) Stats {
	st := Stats{Count: len(results)}
	if st.Count == 0 {
		return st
	}
	total := 0
	for _, r := range results {
		total += r.Score
		if r.KnowsCNV {
			st.KnowsCNV++
		}
	}
	st.AverageScore = float64(total) / float64(st.Count)
	return st
}

// SortByCompletedDesc returns a copy of results, newest first.
func SortByCompletedDesc(results []StoredResult) []StoredResult {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b StoredResult) int {
		return cmp.Compare(b.CompletedAt.UnixNano(), a.CompletedAt.UnixNano())
	})
	return sorted
}
