package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported in FileInfo.
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-bom"
	EncodingUTF16   = "utf-16"
	EncodingCP949   = "cp949"
	EncodingLatin1  = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// legacyEncodings are tried when the bytes are not valid UTF-8. Ads manager
// exports saved from Excel on Korean Windows are CP949; Windows-1252 maps
// every byte and so only serves as the last resort.
var legacyEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{EncodingCP949, korean.EUCKR},
}

// maxBadRatio is the share of non-ASCII runes that may fail to decode before
// a candidate encoding is rejected. A single bad rune, such as a truncated
// trailing byte, is always tolerated.
const maxBadRatio = 0.05

// Decode converts delimited text to a UTF-8 string and reports the source encoding.
func Decode(data []byte) (string, string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", "", ErrEmptyFile
	}

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return strings.ToValidUTF8(string(data[len(bomUTF8):]), string(utf8.RuneError)), EncodingUTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", "", err
		}
		return string(out), EncodingUTF16, nil
	case utf8.Valid(data):
		return string(data), EncodingUTF8, nil
	}

	// UTF-8 with a few stray bytes beats any legacy reading of it.
	if bad, wide := scoreUTF8(data); tolerable(bad, wide) {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), EncodingUTF8, nil
	}
	for _, candidate := range legacyEncodings {
		out, _, err := transform.Bytes(candidate.enc.NewDecoder(), data)
		if err != nil {
			continue
		}
		if bad, wide := scoreUTF8(out); tolerable(bad, wide) {
			return strings.ToValidUTF8(string(out), string(utf8.RuneError)), candidate.name, nil
		}
	}

	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", "", err
	}
	return string(out), EncodingLatin1, nil
}

// scoreUTF8 counts undecodable bytes and U+FFFD runes (bad) and all
// non-ASCII runes including the bad ones (wide).
func scoreUTF8(b []byte) (bad, wide int) {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r < utf8.RuneSelf {
			continue
		}
		wide++
		if r == utf8.RuneError {
			bad++
		}
	}
	return bad, wide
}

func tolerable(bad, wide int) bool {
	return bad <= 1 || float64(bad) <= maxBadRatio*float64(wide)
}
