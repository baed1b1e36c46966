// Package thread holds the view state of a conversation about an uploaded
// document: the current query, the latest answer with its sources and OCR
// text, and whether a request is in flight.
package thread

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/mgomes/img2xl/internal/api"
)

const (
	SummarizePrompt = "Summarize this document"

	NoAnswer    = "No answer returned."
	ServerError = "Server error. Please try again."
	EmptyAnswer = "Ask something about your uploaded document."
	Thinking    = "Thinking..."
	Analyzing   = "AI is analyzing your document..."
)

type Document struct {
	Name string
	Size int64
}

// Request identifies a started ask. Responses are matched back to the
// state by Seq; anything older than the latest request is ignored. Seq is
// unique across all states, so a late response for an abandoned thread
// never matches a new one.
type Request struct {
	Seq      uint64
	Question string
}

var lastSeq atomic.Uint64

type State struct {
	ID       string
	Query    string
	Answer   string
	Sources  []string
	OCRText  string
	Document *Document
	AskedAt  time.Time

	loading bool
	seq     uint64
	pending string
}

func New(query string) State {
	return State{Query: query}
}

func (s *State) Loading() bool {
	return s.loading
}

// Begin starts an ask for question. Blank input or a request already in
// flight makes it a no-op.
func (s *State) Begin(question string) (Request, bool) {
	if strings.TrimSpace(question) == "" || s.loading {
		return Request{}, false
	}

	s.seq = lastSeq.Add(1)
	s.loading = true
	s.pending = question

	return Request{Seq: s.seq, Question: question}, true
}

// Apply records a successful answer. It reports false when seq is stale.
func (s *State) Apply(seq uint64, res *api.AnswerResult) bool {
	if !s.current(seq) {
		return false
	}

	s.loading = false
	s.Query = s.pending
	s.pending = ""

	if res == nil {
		res = &api.AnswerResult{}
	}

	s.Answer = res.Answer
	if s.Answer == "" {
		s.Answer = NoAnswer
	}

	s.Sources = make([]string, 0, len(res.Sources))
	for _, src := range res.Sources {
		s.Sources = append(s.Sources, src.ChunkText)
	}

	s.OCRText = res.OCRText
	s.AskedAt = time.Now()

	return true
}

// Fail replaces the answer with the server error text. Sources and OCR
// text from the previous success stay as they were.
func (s *State) Fail(seq uint64) bool {
	if !s.current(seq) {
		return false
	}

	s.loading = false
	s.pending = ""
	s.Answer = ServerError

	return true
}

// Invalidate drops any in-flight request so its response is ignored.
func (s *State) Invalidate() {
	s.seq = 0
	s.loading = false
	s.pending = ""
}

func (s *State) current(seq uint64) bool {
	return s.loading && seq == s.seq
}

// DisplayAnswer is the text shown in the answer area.
func (s *State) DisplayAnswer() string {
	if s.loading {
		return Thinking
	}
	if s.Answer == "" {
		return EmptyAnswer
	}
	return s.Answer
}

func (s *State) Record() Record {
	rec := Record{
		ID:        s.ID,
		Query:     s.Query,
		Answer:    s.Answer,
		Sources:   append([]string(nil), s.Sources...),
		OCRText:   s.OCRText,
		CreatedAt: s.AskedAt,
	}
	if s.Document != nil {
		rec.FileName = s.Document.Name
	}
	return rec
}

// Restore builds a state from a stored record.
func Restore(rec Record) State {
	s := State{
		ID:      rec.ID,
		Query:   rec.Query,
		Answer:  rec.Answer,
		Sources: append([]string(nil), rec.Sources...),
		OCRText: rec.OCRText,
		AskedAt: rec.CreatedAt,
	}
	if rec.FileName != "" {
		s.Document = &Document{Name: rec.FileName}
	}
	return s
}
