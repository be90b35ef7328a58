package patch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// ErrStale is returned when a file changed between classification and
// patching.
var ErrStale = errors.New("file changed since it was analyzed")

// Fingerprint hashes data.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fingerprintFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// checkFresh compares the file's current content against the fingerprint
// taken when it was parsed. An empty fingerprint disables the check.
func checkFresh(fs afero.Fs, path, want string) error {
	if want == "" {
		return nil
	}
	got, err := fingerprintFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}
	if got != want {
		return fmt.Errorf("%w: %s", ErrStale, path)
	}
	return nil
}
