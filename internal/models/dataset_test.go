package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func records(file string, accounts ...string) []AdRecord {
	out := make([]AdRecord, len(accounts))
	for i, a := range accounts {
		out[i] = AdRecord{Account: a, SourceFile: file, Spend: decimal.NewFromInt(100)}
	}
	return out
}

func TestDataset_Merge(t *testing.T) {
	ds := NewDataset()
	ds.Merge(
		&ParsedFile{Info: FileInfo{Name: "a.csv"}, Records: records("a.csv", "brand", "brand")},
		nil,
		&ParsedFile{Info: FileInfo{Name: "b.csv"}, Records: records("b.csv", "outlet")},
	)

	if len(ds.Files) != 2 {
		t.Fatalf("Files = %d, want 2", len(ds.Files))
	}
	if len(ds.Records) != 3 {
		t.Fatalf("Records = %d, want 3", len(ds.Records))
	}

	// Re-uploading a file replaces its records.
	ds.Merge(&ParsedFile{Info: FileInfo{Name: "a.csv"}, Records: records("a.csv", "brand")})

	if len(ds.Files) != 2 {
		t.Errorf("Files = %d, want 2", len(ds.Files))
	}
	if len(ds.Records) != 2 {
		t.Errorf("Records = %d, want 2", len(ds.Records))
	}
	if ds.Files[1].Name != "a.csv" {
		t.Errorf("replaced file should move to the end, got %q", ds.Files[1].Name)
	}
}

func TestDataset_Accounts(t *testing.T) {
	ds := NewDataset()
	ds.Merge(&ParsedFile{Info: FileInfo{Name: "a.csv"}, Records: records("a.csv", "brand", "outlet", "brand")})

	got := ds.Accounts()
	if len(got) != 2 || got[0] != "brand" || got[1] != "outlet" {
		t.Errorf("Accounts() = %v, want [brand outlet]", got)
	}
}

func TestDataset_IsEmpty(t *testing.T) {
	var nilDS *Dataset
	if !nilDS.IsEmpty() {
		t.Error("nil dataset should be empty")
	}
	if !NewDataset().IsEmpty() {
		t.Error("new dataset should be empty")
	}
}
