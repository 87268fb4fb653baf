package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "pipeline.yaml", "model: small\nbatch_size: 8\nnested:\n  depth: 2\n")

	cfg, resolved, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	if cfg["model"] != "small" {
		t.Fatalf("model = %v", cfg["model"])
	}
	if cfg["batch_size"] != 8 {
		t.Fatalf("batch_size = %v", cfg["batch_size"])
	}
}

func TestLoadConfigFileRejections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	scalar := writeFile(t, dir, "scalar.yaml", "just a string\n")
	broken := writeFile(t, dir, "broken.yaml", "key: [unclosed\n")

	cases := []struct {
		name string
		path string
	}{
		{"empty path", "   "},
		{"remote url", "https://example.com/config.yaml"},
		{"missing file", filepath.Join(dir, "absent.yaml")},
		{"non-mapping document", scalar},
		{"invalid yaml", broken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := LoadConfigFile(tc.path); err == nil {
				t.Fatalf("LoadConfigFile(%q) succeeded, want error", tc.path)
			}
		})
	}
}

func TestListConfigFilesInDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "Zeta.yaml", "a: 1\n")
	writeFile(t, dir, "alpha.yml", "a: 1\n")
	writeFile(t, dir, "beta.yaml", "a: 1\n")
	writeFile(t, dir, "notes.txt", "skip me\n")
	if err := os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := listConfigFilesInDir(dir)
	if err != nil {
		t.Fatalf("listConfigFilesInDir: %v", err)
	}
	want := []string{"alpha.yml", "beta.yaml", "Zeta.yaml"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files = %v, want %v", files, want)
		}
	}
}

func TestListConfigFilesInDirMissing(t *testing.T) {
	t.Parallel()

	if _, err := listConfigFilesInDir(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("listConfigFilesInDir on a missing dir succeeded")
	}
}
