package api

import "encoding/json"

type AskRequest struct {
	Question string `json:"question"`
}

// AnswerResult is the body returned by POST /ask. Every field is optional.
type AnswerResult struct {
	Answer  string   `json:"answer,omitempty"`
	Sources []Source `json:"sources,omitempty"`
	OCRText string   `json:"ocr_text,omitempty"`
}

type Source struct {
	ChunkText string `json:"chunk_text"`
}

// UploadResult is the opaque body returned by POST /upload.
type UploadResult struct {
	FileName string
	Size     int64
	Body     json.RawMessage
}
