package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"marquee/internal/fileutil"
	"marquee/internal/library"
)

// IdentityFile is the sidecar that caches a title's identity between runs.
const IdentityFile = "ids.json"

// ReadIdentity loads the sidecar identity of a title directory. found is
// false when no sidecar exists; a sidecar that cannot be decoded or lacks a
// local key or catalog id is reported as an error.
func ReadIdentity(dir string) (identity library.Identity, found bool, err error) {
	data, err := os.ReadFile(filepath.Join(dir, IdentityFile))
	if errors.Is(err, os.ErrNotExist) {
		return library.Identity{}, false, nil
	}
	if err != nil {
		return library.Identity{}, false, fmt.Errorf("read %s: %w", IdentityFile, err)
	}
	if err := json.Unmarshal(data, &identity); err != nil {
		return library.Identity{}, false, fmt.Errorf("decode %s: %w", IdentityFile, err)
	}
	if !identity.Valid() {
		return library.Identity{}, false, fmt.Errorf("%s in %s is incomplete", IdentityFile, dir)
	}
	return identity, true, nil
}

// WriteIdentity writes the sidecar identity atomically.
func WriteIdentity(dir string, identity library.Identity) error {
	data, err := identity.Marshal()
	if err != nil {
		return fmt.Errorf("encode %s: %w", IdentityFile, err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(dir, IdentityFile), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", IdentityFile, err)
	}
	return nil
}
