// Package textenc normalises uploaded text files to UTF-8.
package textenc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding a file was read as.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO8859_9   Charset = "ISO-8859-9"
)

const sniffLen = 4096

var boms = []struct {
	prefix  []byte
	charset Charset
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// detected maps chardet results onto the decoders we trust.
var detected = map[string]Charset{
	"UTF-8":        UTF8,
	"ISO-8859-1":   Windows1252,
	"windows-1252": Windows1252,
	"ISO-8859-9":   ISO8859_9,
}

var decoders = map[Charset]encoding.Encoding{
	UTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	Windows1252: charmap.Windows1252,
	ISO8859_9:   charmap.ISO8859_9,
}

// Decode sniffs the start of r and returns a reader yielding UTF-8 with any
// byte order mark removed. Files that are neither marked, valid UTF-8 nor
// recognised by chardet are read as Windows-1252, which is what spreadsheet
// exports on Windows default to.
func Decode(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(head, bom.prefix) {
			continue
		}

		if bom.charset == UTF8 {
			_, _ = br.Discard(len(bom.prefix))
			return br, UTF8, nil
		}

		return transform.NewReader(br, decoders[bom.charset].NewDecoder()), bom.charset, nil
	}

	if utf8.Valid(head) {
		return br, UTF8, nil
	}

	charset := Windows1252

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if known, ok := detected[res.Charset]; ok {
			charset = known
		}
	}

	if charset == UTF8 {
		return br, UTF8, nil
	}

	return transform.NewReader(br, decoders[charset].NewDecoder()), charset, nil
}
