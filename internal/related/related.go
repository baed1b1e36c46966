// Package related suggests follow-up questions for a thread by looking up
// similar questions asked in earlier threads.
package related

import (
	"context"
	"fmt"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mgomes/img2xl/internal/cohere"
	"github.com/mgomes/img2xl/internal/db"
)

const (
	vectorSearchLimit = 20
	maxSuggestions    = 3
)

// Defaults are shown when no history index is available.
var Defaults = []string{
	"How to verify OCR accuracy?",
	"Exporting tables to Quickbooks",
	"Automating invoice processing",
}

type Model interface {
	EmbedQuestion(ctx context.Context, question string) ([]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]cohere.RerankResult, error)
}

type Index interface {
	InsertEmbedding(threadID int64, embedding []byte) error
	SearchSimilar(queryEmbedding []byte, limit int) ([]db.Match, error)
}

type Finder struct {
	index Index
	model Model
}

// New returns a Finder. A nil model disables the index and Find always
// returns Defaults.
func New(index Index, model Model) *Finder {
	return &Finder{index: index, model: model}
}

func (f *Finder) Enabled() bool {
	return f != nil && f.index != nil && f.model != nil
}

// Remember indexes a saved thread's question.
func (f *Finder) Remember(ctx context.Context, threadID int64, question string) error {
	if !f.Enabled() {
		return nil
	}

	emb, err := f.model.EmbedQuestion(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to embed question: %w", err)
	}

	embBytes, err := sqlite_vec.SerializeFloat32(emb)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding: %w", err)
	}

	if err := f.index.InsertEmbedding(threadID, embBytes); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// Find returns up to three earlier questions related to query. The
// returned slice is never empty: on error or no matches it is Defaults,
// and the error is returned alongside for logging.
func (f *Finder) Find(ctx context.Context, query string) ([]string, error) {
	if !f.Enabled() {
		return Defaults, nil
	}

	queryEmb, err := f.model.EmbedQuery(ctx, query)
	if err != nil {
		return Defaults, fmt.Errorf("failed to embed query: %w", err)
	}

	embBytes, err := sqlite_vec.SerializeFloat32(queryEmb)
	if err != nil {
		return Defaults, fmt.Errorf("failed to serialize query embedding: %w", err)
	}

	candidates, err := f.index.SearchSimilar(embBytes, vectorSearchLimit)
	if err != nil {
		return Defaults, fmt.Errorf("vector search failed: %w", err)
	}

	questions := distinctQuestions(query, candidates)
	if len(questions) == 0 {
		return Defaults, nil
	}

	ranked, err := f.model.Rerank(ctx, query, questions, maxSuggestions)
	if err != nil {
		return Defaults, fmt.Errorf("rerank failed: %w", err)
	}

	results := make([]string, 0, len(ranked))
	for _, rr := range ranked {
		if rr.Index < 0 || rr.Index >= len(questions) {
			continue
		}
		results = append(results, questions[rr.Index])
	}

	if len(results) == 0 {
		return Defaults, nil
	}
	return results, nil
}

// distinctQuestions drops the current query and repeated questions,
// keeping vector-distance order.
func distinctQuestions(query string, matches []db.Match) []string {
	seen := map[string]bool{normalize(query): true}

	var questions []string
	for _, m := range matches {
		key := normalize(m.Query)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		questions = append(questions, m.Query)
	}
	return questions
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
