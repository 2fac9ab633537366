package vitals

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestVisitFileRepo_OpenMissing(t *testing.T) {
	repo := NewVisitFileRepo(filepath.Join(t.TempDir(), "missing.txt"))
	_, err := repo.Open(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected the not-exist cause to be kept, got %v", err)
	}
}

func TestVisitFileRepo_Append(t *testing.T) {
	tests := []struct {
		name    string
		initial *string
		want    string
	}{
		{"creates missing file", nil, "L\n"},
		{"empty file", strPtr(""), "L\n"},
		{"trailing newline", strPtr("A\n"), "A\nL\n"},
		{"no trailing newline", strPtr("A"), "A\nL\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "patients.txt")
			if tt.initial != nil {
				if err := os.WriteFile(path, []byte(*tt.initial), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			repo := NewVisitFileRepo(path)
			if err := repo.Append(context.Background(), "L"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("file = %q, want %q", string(data), tt.want)
			}
		})
	}
}

func TestVisitFileRepo_Rewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patients.txt")
	if err := os.WriteFile(path, []byte("garbage\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewVisitStore()
	store.Add(1, visitOn(2024, 5, 1, 70))
	store.Add(2, visitOn(2024, 5, 2, 80))

	repo := NewVisitFileRepo(path)
	if err := repo.Rewrite(context.Background(), store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rc, err := repo.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	want := "1,2024-05-01,37.0,70,16,120,80,98\n2,2024-05-02,37.0,80,16,120,80,98\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", string(data), want)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected temp file to be cleaned up, found %d entries", len(entries))
	}
}

func TestVisitFileRepo_RewriteEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.txt")
	if err := os.WriteFile(path, []byte("1,2024-05-01,37.0,70,16,120,80,98\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewVisitFileRepo(path).Rewrite(context.Background(), NewVisitStore()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
}

func strPtr(s string) *string { return &s }
