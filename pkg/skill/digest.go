package skill

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Digest returns a stable content hash of the package: the SHA-256 over
// every file's relative path and bytes, in sorted path order. Two packages
// with the same digest upload identically.
func (s *Skill) Digest() (string, error) {
	files, err := s.Files()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, rel := range files {
		f, err := os.Open(filepath.Join(s.Directory, filepath.FromSlash(rel)))
		if err != nil {
			return "", errors.Wrapf(err, "failed to open %s", rel)
		}

		io.WriteString(h, rel)
		h.Write([]byte{0})
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", errors.Wrapf(err, "failed to hash %s", rel)
		}
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
