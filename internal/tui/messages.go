package tui

import (
	"github.com/mgomes/img2xl/internal/api"
	"github.com/mgomes/img2xl/internal/db"
	"github.com/mgomes/img2xl/internal/thread"
)

type SetupSubmitMsg struct {
	APIBaseURL   string
	CohereAPIKey string
}

type SetupErrorMsg struct {
	Error string
}

// SubmitQueryMsg asks the root model to open a thread for Query.
type SubmitQueryMsg struct {
	Query    string
	Document *thread.Document
}

type UploadDoneMsg struct {
	Seq    uint64
	Result *api.UploadResult
}

type UploadErrorMsg struct {
	Seq uint64
	Err error
}

type AskResultMsg struct {
	Seq    uint64
	Result *api.AnswerResult
}

type AskErrorMsg struct {
	Seq uint64
	Err error
}

type SavedMsg struct {
	Record thread.Record
}

type RelatedMsg struct {
	Query       string
	Suggestions []string
}

type HistoryMsg struct {
	Threads []db.ThreadSummary
}

type OpenThreadMsg struct {
	ID string
}

type ThreadLoadedMsg struct {
	Record thread.Record
}

type ThreadLoadErrorMsg struct {
	Err error
}

type ExportedMsg struct {
	Path string
	Err  error
}
