package simulation

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMaterialWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.toml")
	if err := os.WriteFile(path, []byte("[[material]]\nname = \"basalt\"\nsoftness = 0.1\nstrength = 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	mw, err := WatchMaterials(path)
	if err != nil {
		t.Fatalf("WatchMaterials failed: %v", err)
	}
	defer mw.Close()

	update := []byte("[[material]]\nname = \"granite\"\nsoftness = 0.2\nstrength = 0.6\n")
	if err := os.WriteFile(path, update, 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case reg := <-mw.Updates():
			if _, ok := reg.Lookup("granite"); ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for material reload")
		}
	}
}

func TestMaterialWatcherMissingDirectory(t *testing.T) {
	_, err := WatchMaterials(filepath.Join(t.TempDir(), "missing", "materials.toml"))
	if err == nil {
		t.Error("expected error watching a missing directory")
	}
}
