package dal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotodraft/draftroom/internal/models"
)

func sampleConfig(name string, age time.Duration) models.KeeperConfig {
	return models.KeeperConfig{
		Name:      name,
		CreatedAt: time.Now().Add(-age),
		TeamNames: []string{"Alpha", "Beta"},
		Keepers: map[string][]models.Keeper{
			"team-1": {{PlayerID: "b1", Cost: 14}},
		},
	}
}

// storeUnderTest runs the shared ConfigStore contract against one backend.
func storeUnderTest(t *testing.T, store ConfigStore) {
	t.Helper()

	saved, err := store.SaveConfig(sampleConfig("My League", 0))
	if err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved config has empty id")
	}

	got, err := store.GetConfig(saved.ID)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if got.Config.Name != "My League" {
		t.Errorf("name = %q, want My League", got.Config.Name)
	}
	if len(got.Config.Keepers["team-1"]) != 1 || got.Config.Keepers["team-1"][0].Cost != 14 {
		t.Errorf("keepers did not round-trip: %+v", got.Config.Keepers)
	}

	if _, err := store.GetConfig("no-such-id"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing id: err = %v, want ErrConfigNotFound", err)
	}

	older, err := store.SaveConfig(sampleConfig("Older League", time.Hour))
	if err != nil {
		t.Fatalf("SaveConfig older: %v", err)
	}

	list, err := store.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}
	if list[0].ID != saved.ID || list[1].ID != older.ID {
		t.Errorf("list not most-recent-first: %s then %s", list[0].ID, list[1].ID)
	}

	if err := store.DeleteConfig(saved.ID); err != nil {
		t.Fatalf("DeleteConfig: %v", err)
	}
	if _, err := store.GetConfig(saved.ID); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("deleted config still readable: %v", err)
	}
	if err := store.DeleteConfig(saved.ID); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("double delete: err = %v, want ErrConfigNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeUnderTest(t, store)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	storeUnderTest(t, store)
}

func TestFileStoreIDFromName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	saved, err := store.SaveConfig(sampleConfig("  2026 Mock / Draft!  ", 0))
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID != "2026_Mock_Draft" {
		t.Errorf("id = %q, want 2026_Mock_Draft", saved.ID)
	}
	if _, err := os.Stat(filepath.Join(dir, saved.ID+".json")); err != nil {
		t.Errorf("config file missing: %v", err)
	}

	// Saving the same name overwrites, keeping a stable id across restarts.
	if _, err := store.SaveConfig(sampleConfig("2026 Mock / Draft", 0)); err != nil {
		t.Fatal(err)
	}
	list, err := store.ListConfigs()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("list length = %d, want 1 after overwrite", len(list))
	}
}

func TestFileStorePathEscape(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.GetConfig("../../etc/passwd"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("traversal id: err = %v, want ErrConfigNotFound", err)
	}
	if err := store.DeleteConfig("../outside"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("traversal delete: err = %v, want ErrConfigNotFound", err)
	}
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveConfig(sampleConfig("Real", 0)); err != nil {
		t.Fatal(err)
	}

	list, err := store.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs with junk present: %v", err)
	}
	if len(list) != 1 || list[0].Config.Name != "Real" {
		t.Errorf("list = %+v, want only Real", list)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"plain":          "plain",
		"  spaces  ":     "spaces",
		"a b c":          "a_b_c",
		"slash/dot.name": "slash_dot_name",
		"___":            "unnamed",
		"":               "unnamed",
	}
	for in, want := range cases {
		if got := sanitizeName(in); got != want {
			t.Errorf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
