package models

import (
	"time"

	"github.com/google/uuid"
)

// Source file formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

// FileInfo describes one parsed upload.
type FileInfo struct {
	Name      string   `json:"name"`
	Account   string   `json:"account"`
	Format    string   `json:"format"`
	Encoding  string   `json:"encoding,omitempty"`
	Delimiter string   `json:"delimiter,omitempty"`
	Sheet     string   `json:"sheet,omitempty"`
	HeaderRow int      `json:"header_row"`
	Rows      int      `json:"rows"`
	Skipped   int      `json:"skipped"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ParsedFile is the result of reading a single export.
type ParsedFile struct {
	Info    FileInfo
	Records []AdRecord
}

// Dataset is the working table of one browser session.
type Dataset struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Files     []FileInfo `json:"files"`
	Records   []AdRecord `json:"records"`
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	now := time.Now()
	return &Dataset{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Merge adds parsed files to the dataset. A file whose name is already
// present replaces the earlier upload of that name.
func (d *Dataset) Merge(files ...*ParsedFile) {
	for _, f := range files {
		if f == nil {
			continue
		}
		d.remove(f.Info.Name)
		d.Files = append(d.Files, f.Info)
		d.Records = append(d.Records, f.Records...)
	}
	d.UpdatedAt = time.Now()
}

func (d *Dataset) remove(name string) {
	found := false
	files := d.Files[:0]
	for _, f := range d.Files {
		if f.Name == name {
			found = true
			continue
		}
		files = append(files, f)
	}
	d.Files = files
	if !found {
		return
	}

	records := d.Records[:0]
	for _, r := range d.Records {
		if r.SourceFile != name {
			records = append(records, r)
		}
	}
	d.Records = records
}

// Accounts returns the distinct account names in record order.
func (d *Dataset) Accounts() []string {
	seen := make(map[string]bool)
	var accounts []string
	for _, r := range d.Records {
		if !seen[r.Account] {
			seen[r.Account] = true
			accounts = append(accounts, r.Account)
		}
	}
	return accounts
}

// IsEmpty returns true if the dataset holds no records.
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.Records) == 0
}
