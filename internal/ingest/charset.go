package ingest

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding represents a source text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1250 Encoding = "windows-1250"
	EncodingISO88592    Encoding = "iso-8859-2"
)

// DetectEncoding guesses the encoding of a feed file. Supplier exports are
// either UTF-8 or a Central European single-byte codepage.
func DetectEncoding(data []byte) Encoding {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return EncodingUTF8
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingWindows1250
}

// DecodeToUTF8 converts a byte buffer from the given encoding to a UTF-8
// string. Data that is already valid UTF-8 passes through untouched, which
// guards against suppliers that declare one encoding and deliver another.
func DecodeToUTF8(data []byte, enc Encoding) (string, error) {
	// Strip UTF-8 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	var cm *charmap.Charmap
	switch enc {
	case EncodingISO88592:
		cm = charmap.ISO8859_2
	case EncodingWindows1250, EncodingUTF8, "":
		cm = charmap.Windows1250
	default:
		return "", fmt.Errorf("unsupported encoding: %s", enc)
	}

	decoded, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(decoded), nil
}
