package sources

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DecodeText turns raw document bytes into UTF-8. A byte-order mark selects UTF-8 or
// UTF-16; otherwise invalid UTF-8 is read as Windows-1252, which is what office
// exports of older lists usually are.
func DecodeText(data []byte) (string, error) {
	var decoder transform.Transformer = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	if !hasBOM(data) && !utf8.Valid(data) {
		decoder = charmap.Windows1252.NewDecoder()
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

// NormalizeLines splits text into lines, applying NFKC so that full-width digits,
// non-breaking spaces and ligatures compare like their plain forms. Whitespace-only
// lines become empty strings rather than being removed, so line numbers keep matching
// the source.
func NormalizeLines(text string) []string {
	text = norm.NFKC.String(text)
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\t", " ").Replace(text)
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}
