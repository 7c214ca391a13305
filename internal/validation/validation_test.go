package validation

import (
	"strings"
	"testing"
)

func TestValidateProductCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"letters and digits", "A123", true},
		{"digits only", "12345", true},
		{"single char", "A", false},
		{"lower case", "a123", false},
		{"hyphen", "A-123", false},
		{"space", "A 123", false},
		{"empty", "", false},
		{"too long", strings.Repeat("A", 21), false},
		{"unicode", "상품1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateProductCode(tt.code); got != tt.want {
				t.Errorf("ValidateProductCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		max    float64
		valid  bool
	}{
		{"zero uses default", 0, 10000, true},
		{"typical", 300, 10000, true},
		{"at max", 10000, 10000, true},
		{"negative", -1, 10000, false},
		{"over max", 10001, 10000, false},
		{"no max", 50000, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateTarget(tt.target, tt.max)
			if valid != tt.valid {
				t.Errorf("ValidateTarget(%v) valid = %v, want %v (%s)", tt.target, valid, tt.valid, msg)
			}
			if !valid && msg == "" {
				t.Error("invalid target should have a message")
			}
		})
	}
}

func TestValidateUploadName(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		valid bool
	}{
		{"csv", "report.csv", true},
		{"upper case extension", "REPORT.XLSX", true},
		{"korean name", "쿠팡_광고보고서_9월.xls", true},
		{"tsv", "data.tsv", true},
		{"empty", "", false},
		{"blank", "   ", false},
		{"no extension", "report", false},
		{"pdf", "report.pdf", false},
		{"path traversal", "../etc/passwd.csv", false},
		{"slash", "dir/report.csv", false},
		{"backslash", "dir\\report.csv", false},
		{"null byte", "a\x00.csv", false},
		{"dot dot", "..", false},
		{"dots before extension", "보고서...csv", true},
		{"double dot in name", "9월..xlsx", true},
		{"too long", strings.Repeat("a", 252) + ".csv", false},
		{"invalid utf-8", "\xff.csv", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateUploadName(tt.file)
			if valid != tt.valid {
				t.Errorf("ValidateUploadName(%q) = %v, want %v (%s)", tt.file, valid, tt.valid, msg)
			}
		})
	}
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/catalog", "/catalog"},
		{"/?account=brand&from=2024-09-01", "/?account=brand&from=2024-09-01"},
		{"", "/"},
		{"https://evil.example.com", "/"},
		{"//evil.example.com", "/"},
		{"/\\evil.example.com", "/"},
		{"javascript:alert(1)", "/"},
		{"catalog", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SafeRedirect(tt.in); got != tt.want {
				t.Errorf("SafeRedirect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report", "report"},
		{"광고 보고서", "광고_보고서"},
		{"a/b\\c", "a_b_c"},
		{"...", "report"},
		{"", "report"},
		{"report-2024.09", "report-2024.09"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
