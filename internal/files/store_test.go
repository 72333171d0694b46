package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	s, err := New(filepath.Join(base, "receipts"), filepath.Join(base, "sections"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestSaveReceiptRoundTrip(t *testing.T) {
	s := newStore(t)

	path, err := s.SaveReceipt(strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("content = %q", data)
	}
	if filepath.Ext(path) != ".jpg" {
		t.Fatalf("ext = %s", filepath.Ext(path))
	}
}

func TestReceiptsAndSectionsSeparated(t *testing.T) {
	s := newStore(t)

	receipt, err := s.SaveReceipt(strings.NewReader("r"))
	if err != nil {
		t.Fatalf("save receipt: %v", err)
	}
	section, err := s.SaveSection(strings.NewReader("s"))
	if err != nil {
		t.Fatalf("save section: %v", err)
	}
	if filepath.Dir(receipt) == filepath.Dir(section) {
		t.Fatal("receipt and section photos share a directory")
	}
}

func TestRemoveTolerant(t *testing.T) {
	s := newStore(t)

	path, err := s.SaveReceipt(strings.NewReader("r"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file still exists")
	}
	// Second remove and empty path are both no-ops.
	if err := s.Remove(path); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if err := s.Remove(""); err != nil {
		t.Fatalf("empty path remove: %v", err)
	}
}
