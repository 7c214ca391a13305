package models

// FileResult is the per-file outcome of an upload, returned by both the
// dashboard and the JSON API.
type FileResult struct {
	Name     string   `json:"name"`
	Outcome  string   `json:"outcome"`
	Rows     int      `json:"rows"`
	Skipped  int      `json:"skipped"`
	Encoding string   `json:"encoding,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ResultFor builds the success result of a parsed file.
func ResultFor(f *ParsedFile) FileResult {
	return FileResult{
		Name:     f.Info.Name,
		Outcome:  OutcomeParsed,
		Rows:     f.Info.Rows,
		Skipped:  f.Info.Skipped,
		Encoding: f.Info.Encoding,
		Warnings: f.Info.Warnings,
	}
}

// HealthResponse is the body of the health and readiness probes.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
