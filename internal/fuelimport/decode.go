package fuelimport

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// Encoding names reported by Decode.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw upload bytes to text.
//
// A leading UTF-8 byte order mark is dropped. Valid UTF-8 is returned as is;
// anything else is decoded as Shift_JIS, which is what spreadsheet exports
// from Japanese fuel-card providers use. The detected encoding name is
// returned alongside the text.
func Decode(raw []byte) (string, string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), EncodingUTF8, nil
	}

	out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("fuelimport.Decode: %w", err)
	}
	return string(out), EncodingShiftJIS, nil
}
