package archive

import (
	"io"
	"os"

	"github.com/h2non/filetype"
)

// sniffLen is enough for every signature filetype knows about.
const sniffLen = 262

// IsArchive reports whether file content looks like zip archive regardless
// of file name.
func IsArchive(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return IsArchiveData(head[:n]), nil
}

// IsArchiveData reports whether buffer starts with zip signature.
func IsArchiveData(head []byte) bool {
	return filetype.Is(head, "zip")
}
