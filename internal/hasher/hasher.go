// Package hasher computes the content checksums attached to emitted
// file records, so the persistence layer can verify uploads.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// ChecksumReader computes the xxHash64 of r, streaming, and returns it as
// a 16-char hex string.
func ChecksumReader(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h.Sum64())
	return hex.EncodeToString(b[:]), nil
}

// ChecksumFile computes the checksum of the file at path.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ChecksumReader(f)
}
