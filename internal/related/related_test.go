package related

import (
	"context"
	"errors"
	"testing"

	"github.com/mgomes/img2xl/internal/cohere"
	"github.com/mgomes/img2xl/internal/db"
)

type fakeModel struct {
	embedErr  error
	rerankErr error
	reranked  []string
}

func (m *fakeModel) EmbedQuestion(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, m.embedErr
}

func (m *fakeModel) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, m.embedErr
}

// Rerank reverses the candidate order so tests can tell it ran.
func (m *fakeModel) Rerank(_ context.Context, _ string, docs []string, topN int) ([]cohere.RerankResult, error) {
	if m.rerankErr != nil {
		return nil, m.rerankErr
	}
	m.reranked = docs

	var out []cohere.RerankResult
	for i := len(docs) - 1; i >= 0 && len(out) < topN; i-- {
		out = append(out, cohere.RerankResult{Index: i, Score: float64(i)})
	}
	return out, nil
}

type fakeIndex struct {
	matches  []db.Match
	inserted map[int64][]byte
	err      error
}

func (x *fakeIndex) InsertEmbedding(id int64, emb []byte) error {
	if x.inserted == nil {
		x.inserted = map[int64][]byte{}
	}
	x.inserted[id] = emb
	return x.err
}

func (x *fakeIndex) SearchSimilar([]byte, int) ([]db.Match, error) {
	return x.matches, x.err
}

func TestFind_DisabledReturnsDefaults(t *testing.T) {
	f := New(&fakeIndex{}, nil)

	got, err := f.Find(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[0] != "How to verify OCR accuracy?" {
		t.Errorf("expected defaults, got %v", got)
	}

	var nilFinder *Finder
	if nilFinder.Enabled() {
		t.Error("expected nil finder to be disabled")
	}
}

func TestFind_RanksDistinctPastQuestions(t *testing.T) {
	model := &fakeModel{}
	index := &fakeIndex{matches: []db.Match{
		{UUID: "1", Query: "What is the total?"},
		{UUID: "2", Query: "What is the due date?"},
		{UUID: "3", Query: "what is  the due date?"},
		{UUID: "4", Query: "Who is the vendor?"},
		{UUID: "5", Query: "Which currency?"},
		{UUID: "6", Query: "Is tax included?"},
	}}

	got, err := New(index, model).Find(context.Background(), "what is the TOTAL?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCandidates := []string{"What is the due date?", "Who is the vendor?", "Which currency?", "Is tax included?"}
	if len(model.reranked) != len(wantCandidates) {
		t.Fatalf("expected %d rerank candidates, got %v", len(wantCandidates), model.reranked)
	}
	for i := range wantCandidates {
		if model.reranked[i] != wantCandidates[i] {
			t.Errorf("candidate %d: expected %q, got %q", i, wantCandidates[i], model.reranked[i])
		}
	}

	want := []string{"Is tax included?", "Which currency?", "Who is the vendor?"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFind_NoHistoryFallsBack(t *testing.T) {
	got, err := New(&fakeIndex{}, &fakeModel{}).Find(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != Defaults[0] {
		t.Errorf("expected defaults, got %v", got)
	}
}

func TestFind_ErrorsFallBack(t *testing.T) {
	boom := errors.New("boom")

	cases := map[string]*Finder{
		"embed":  New(&fakeIndex{}, &fakeModel{embedErr: boom}),
		"search": New(&fakeIndex{err: boom}, &fakeModel{}),
		"rerank": New(&fakeIndex{matches: []db.Match{{Query: "other"}}}, &fakeModel{rerankErr: boom}),
	}

	for name, f := range cases {
		got, err := f.Find(context.Background(), "q")
		if !errors.Is(err, boom) {
			t.Errorf("%s: expected wrapped error, got %v", name, err)
		}
		if len(got) != len(Defaults) {
			t.Errorf("%s: expected defaults, got %v", name, got)
		}
	}
}

func TestRemember(t *testing.T) {
	index := &fakeIndex{}

	if err := New(index, &fakeModel{}).Remember(context.Background(), 7, "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(index.inserted[7]) != 16 {
		t.Errorf("expected 4 float32s serialized for thread 7, got %d bytes", len(index.inserted[7]))
	}

	disabled := &fakeIndex{}
	if err := New(disabled, nil).Remember(context.Background(), 1, "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(disabled.inserted) != 0 {
		t.Error("expected disabled finder not to index")
	}
}
