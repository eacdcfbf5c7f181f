package ledger

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ReceiptStore keeps receipt files in a single directory. Files are named
// expense_<id>_<basename>.
type ReceiptStore struct {
	dir string
}

// NewReceiptStore creates a ReceiptStore rooted at dir. The directory is
// created on first write.
func NewReceiptStore(dir string) *ReceiptStore {
	return &ReceiptStore{dir: dir}
}

// Dir returns the receipts directory.
func (s *ReceiptStore) Dir() string {
	return s.dir
}

// Save writes data for expenseID and returns the stored file name.
func (s *ReceiptStore) Save(expenseID int64, original string, data []byte) (string, error) {
	base := baseName(original)
	if base == "" {
		return "", fmt.Errorf("invalid receipt name %q", original)
	}
	name := fmt.Sprintf("expense_%d_%s", expenseID, base)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes a stored receipt. Removing a missing file is not an error.
func (s *ReceiptStore) Remove(name string) error {
	if !IsBareName(name) {
		return fmt.Errorf("invalid receipt name %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Read returns the content of a stored receipt. A missing file yields an
// error satisfying os.IsNotExist.
func (s *ReceiptStore) Read(name string) ([]byte, error) {
	if !IsBareName(name) {
		return nil, fmt.Errorf("invalid receipt name %q", name)
	}
	return os.ReadFile(filepath.Join(s.dir, name))
}

// IsBareName reports whether name is a plain file name with no directory part.
func IsBareName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

// baseName strips any client supplied directory, in either slash style.
func baseName(name string) string {
	b := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if !IsBareName(b) {
		return ""
	}
	return b
}
