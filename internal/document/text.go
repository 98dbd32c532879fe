package document

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText tries each configured encoding in order and keeps the first clean decode
func (d *Decoder) decodeText(data []byte) (string, error) {
	var tried []string
	for _, name := range d.encodings {
		dec, ok := candidateDecoders[normalizeEncodingName(name)]
		if !ok {
			return "", fmt.Errorf("unknown text encoding %q", name)
		}
		tried = append(tried, name)
		if text, ok := dec(data); ok {
			return text, nil
		}
	}
	return "", &DecodeError{Tried: tried}
}

type textDecoder func([]byte) (string, bool)

var candidateDecoders = map[string]textDecoder{
	"utf-8":   decodeUTF8,
	"utf-16":  decodeUTF16,
	"latin-1": charmapDecoder(charmap.ISO8859_1),
	"cp1252":  charmapDecoder(charmap.Windows1252),
}

func normalizeEncodingName(name string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "utf-8", "utf8":
		return "utf-8"
	case "utf-16", "utf16":
		return "utf-16"
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return "latin-1"
	case "cp1252", "windows-1252", "win-1252":
		return "cp1252"
	default:
		return name
	}
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), true
}

// decodeUTF16 only accepts input carrying a byte-order mark; without one almost
// any even-length byte string "decodes" into garbage.
func decodeUTF16(data []byte) (string, bool) {
	if len(data) < 2 || len(data)%2 != 0 {
		return "", false
	}
	if !(data[0] == 0xFF && data[1] == 0xFE) && !(data[0] == 0xFE && data[1] == 0xFF) {
		return "", false
	}
	return strictDecode(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data)
}

func charmapDecoder(cm *charmap.Charmap) textDecoder {
	return func(data []byte) (string, bool) {
		return strictDecode(cm, data)
	}
}

// strictDecode fails if the decoder had to substitute any replacement characters
func strictDecode(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
