package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

// mockStoreSpec implements ValidatingSpec for testing FileStore
type mockStoreSpec struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (s *mockStoreSpec) Validate() error {
	return nil
}

func writeAsset(t *testing.T, dir, file string, asset any) {
	t.Helper()

	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	err = os.WriteFile(filepath.Join(dir, file), data, 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestNewFileStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "path", store.path, tmpDir)
	testutil.AssertEqual(t, "records length", len(store.records), 0)
}

func TestNewFileStore_NonExistentDirectory(t *testing.T) {
	_, err := NewFileStore[*mockStoreSpec]("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestNewFileStore_WithExistingAssets(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "act-two")
	if err := os.Mkdir(nested, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	writeAsset(t, tmpDir, "first.json", Asset[*mockStoreSpec]{Version: 1, Identifier: "item-1", Spec: &mockStoreSpec{Name: "First", Value: 1}})
	writeAsset(t, nested, "second.json", Asset[*mockStoreSpec]{Version: 1, Identifier: "item-2", Spec: &mockStoreSpec{Name: "Second", Value: 2}})
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.GetAll()), 2)

	item2 := store.Get("item-2")
	if item2 == nil {
		t.Fatal("expected item-2 to be loaded")
	}
	testutil.AssertEqual(t, "item-2 name", item2.Name, "Second")
	testutil.AssertEqual(t, "item-2 value", item2.Value, 2)

	keys := store.Keys()
	testutil.AssertEqual(t, "key count", len(keys), 2)
	testutil.AssertEqual(t, "first key", keys[0], "item-1")
	testutil.AssertEqual(t, "second key", keys[1], "item-2")

	if store.Get("missing") != nil {
		t.Error("expected nil for missing id")
	}
}

func TestNewFileStore_Errors(t *testing.T) {
	tests := map[string]struct {
		setup  func(t *testing.T, dir string)
		expErr string
	}{
		"invalid json": {
			setup: func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{invalid json`), 0644); err != nil {
					t.Fatalf("failed to write test file: %v", err)
				}
			},
			expErr: "loading bad.json",
		},
		"validation error": {
			setup: func(t *testing.T, dir string) {
				writeAsset(t, dir, "test.json", Asset[*mockStoreSpec]{Identifier: "test", Spec: &mockStoreSpec{}})
			},
			expErr: "validating test.json",
		},
		"duplicate id": {
			setup: func(t *testing.T, dir string) {
				writeAsset(t, dir, "a.json", Asset[*mockStoreSpec]{Version: 1, Identifier: "same", Spec: &mockStoreSpec{}})
				writeAsset(t, dir, "b.json", Asset[*mockStoreSpec]{Version: 1, Identifier: "same", Spec: &mockStoreSpec{}})
			},
			expErr: "duplicate key detected: same",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			_, err := NewFileStore[*mockStoreSpec](dir)
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestFileStore_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "one.json", Asset[*mockStoreSpec]{Version: 1, Identifier: "one", Spec: &mockStoreSpec{Name: "One"}})

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeAsset(t, tmpDir, "two.json", Asset[*mockStoreSpec]{Version: 1, Identifier: "two", Spec: &mockStoreSpec{Name: "Two"}})
	if err := store.Reload(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "after reload", len(store.Keys()), 2)

	// A broken file keeps the last good records.
	if err := os.WriteFile(filepath.Join(tmpDir, "three.json"), []byte(`nope`), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	testutil.AssertEqual(t, "after failed reload", len(store.Keys()), 2)
}

func TestFileStore_GetAll_ReturnsCopy(t *testing.T) {
	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "one.json", Asset[*mockStoreSpec]{Version: 1, Identifier: "one", Spec: &mockStoreSpec{Name: "One"}})

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := store.GetAll()
	delete(all, "one")

	testutil.AssertEqual(t, "store untouched", len(store.GetAll()), 1)
}
