package validation

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ProductCodePattern defines the stored product code format: upper-case letters and digits.
var ProductCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// AllowedExtensions are the upload formats the parser can read.
var AllowedExtensions = []string{".csv", ".tsv", ".txt", ".xlsx", ".xlsm", ".xls"}

// ValidateProductCode checks a normalized product code.
func ValidateProductCode(code string) bool {
	return ProductCodePattern.MatchString(code)
}

// ValidateTarget checks a target ROAS in percent. Zero means "use the default".
func ValidateTarget(target, max float64) (bool, string) {
	if target < 0 {
		return false, "Target ROAS cannot be negative"
	}
	if max > 0 && target > max {
		return false, "Target ROAS is implausibly large"
	}
	return true, ""
}

// ValidateUploadName checks an uploaded file name before it is parsed.
func ValidateUploadName(name string) (bool, string) {
	if strings.TrimSpace(name) == "" {
		return false, "File name is required"
	}
	if !utf8.ValidString(name) || len(name) > 255 {
		return false, "File name is invalid"
	}
	if strings.ContainsAny(name, "/\\\x00") || name == "." || name == ".." {
		return false, "File name must not contain path separators"
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true, ""
		}
	}
	return false, "Only CSV and Excel files (.csv, .tsv, .txt, .xlsx, .xlsm, .xls) are supported"
}

// SafeRedirect returns path if it is a local absolute path, otherwise "/".
// This prevents open redirects through the login "next" parameter.
func SafeRedirect(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return "/"
	}
	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return path
}

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// SanitizeFilename makes a string safe for a Content-Disposition file name.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "report"
	}
	return name
}
