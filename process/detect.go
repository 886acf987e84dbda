package process

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// srcEncoding is encoding of stylesheet source detected by byte order mark.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

const sheetExt = ".css"

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "utf-8"
	case encUTF16BigEndian:
		return "utf-16be"
	case encUTF16LittleEndian:
		return "utf-16le"
	case encUTF32BigEndian:
		return "utf-32be"
	case encUTF32LittleEndian:
		return "utf-32le"
	default:
		return "unknown"
	}
}

// detectBOM looks at the first bytes of the source. UTF-32 marks are checked
// first since UTF-32LE mark starts with UTF-16LE one.
func detectBOM(head []byte) srcEncoding {
	switch {
	case bytes.HasPrefix(head, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return encUTF32BigEndian
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return encUTF32LittleEndian
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return encUTF8
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return encUTF16BigEndian
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return encUTF16LittleEndian
	}
	return encUnknown
}

func isSheetName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), sheetExt)
}

func sniff(r io.Reader) (srcEncoding, error) {
	head := make([]byte, 4)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return encUnknown, err
	}
	return detectBOM(head[:n]), nil
}

// isSheetFile reports whether path names a stylesheet and which encoding its
// byte order mark announces.
func isSheetFile(path string) (bool, srcEncoding, error) {
	if !isSheetName(path) {
		return false, encUnknown, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()

	enc, err := sniff(f)
	if err != nil {
		return false, encUnknown, err
	}
	return true, enc, nil
}

// isSheetInArchive is isSheetFile for archive entries.
func isSheetInArchive(f *zip.File) (bool, srcEncoding, error) {
	if !isSheetName(f.Name) {
		return false, encUnknown, nil
	}
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	enc, err := sniff(r)
	if err != nil {
		return false, encUnknown, err
	}
	return true, enc, nil
}

// selectReader returns reader producing UTF-8 without byte order mark for
// sources with known encoding. Unknown sources are returned as is and decoded
// later by decodeCharset.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	var dec *encoding.Decoder
	switch enc {
	case encUTF8:
		dec = unicode.UTF8BOM.NewDecoder()
	case encUTF16BigEndian:
		dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case encUTF16LittleEndian:
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case encUTF32BigEndian:
		dec = utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder()
	case encUTF32LittleEndian:
		dec = utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder()
	default:
		return r
	}
	return transform.NewReader(r, dec)
}

// charsetRule matches "@charset" rule which, when present, must be the very
// first thing in stylesheet.
var charsetRule = regexp.MustCompile(`^@charset "([^"]{1,40})";`)

// decodeCharset converts source without byte order mark to UTF-8 using
// encoding announced by leading @charset rule. Returned name is empty when
// data was left untouched.
func decodeCharset(data []byte) ([]byte, string, error) {
	m := charsetRule.FindSubmatch(data)
	if m == nil {
		return data, "", nil
	}
	enc, name := charset.Lookup(string(m[1]))
	if enc == nil || name == "utf-8" {
		return data, "", nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, name, err
	}
	return out, name, nil
}
