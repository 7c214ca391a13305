package models

import (
	"time"

	"github.com/google/uuid"
)

// Upload outcome constants
const (
	OutcomeParsed   = "parsed"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// UploadLog is an audit entry for one uploaded file.
type UploadLog struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	Account   string    `json:"account"`
	Format    string    `json:"format"`
	Rows      int       `json:"rows"`
	Outcome   string    `json:"outcome"`
	UserSub   string    `json:"user_sub,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadCount is an aggregated upload count by account and outcome.
type UploadCount struct {
	Account string
	Outcome string
	Count   int64
	Rows    int64
}
