package engine

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// zipMagic is the local file header signature every jar starts with.
var zipMagic = []byte{0x50, 0x4B}

// IsValidArchive reports whether the file at path starts with the ZIP signature.
// A missing file is reported as (false, nil); other read failures are returned.
func IsValidArchive(path string) (bool, error) {
	// #nosec G304 - path is the provisioner's own cache location
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}

	return bytes.Equal(head, zipMagic), nil
}
