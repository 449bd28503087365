package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n",
		filepath.Join(dir, "data"),
		filepath.Join(dir, "logs"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigShowCommand(t *testing.T) {
	out, err := runCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, section := range []string{"[paths]", "[matcher]", "[vocabulary]", "[logging]"} {
		if !strings.Contains(out, section) {
			t.Errorf("sample config missing %s", section)
		}
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output does not mention %s: %q", target, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestConfigValidateCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "config", "validate", "--config", cfgPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestVocabCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "vocab", "--config", cfgPath)
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}
	for _, token := range []string{"hdcam", "telesync", "1080p", "bluray"} {
		if !strings.Contains(out, token) {
			t.Errorf("vocabulary output missing %q", token)
		}
	}
}

const testPayload = `[
  {
    "title": {"id": 1, "name": "Dune", "year": 2021, "kind": "movie",
              "external_ids": {"imdb": "tt1160419"}},
    "subtitles": [
      {"id": 10, "language": "en", "source": "web",
       "encoding_tags": ["x264"], "origin_file": "Dune.2021.WEB.x264.srt"}
    ]
  },
  {
    "title": {"id": 2, "name": "Shogun", "kind": "series"},
    "episodes": [{"season": 1, "episode": 3}],
    "subtitles": [
      {"id": 20, "season": 1, "episode": 3, "language": "en", "source": "web",
       "origin_file": "Shogun.S01E03.720p.WEB.srt"}
    ]
  }
]`

func writeTestPayload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(path, []byte(testPayload), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	return path
}

func TestIndexAddAndList(t *testing.T) {
	cfgPath := writeTestConfig(t)
	payload := writeTestPayload(t)

	out, err := runCommand(t, "index", "add", payload, "--config", cfgPath)
	if err != nil {
		t.Fatalf("index add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "indexed dune-2021") {
		t.Errorf("progress output missing dune-2021: %q", out)
	}
	if !strings.Contains(out, "Indexing complete") {
		t.Errorf("missing completion message: %q", out)
	}

	out, err = runCommand(t, "index", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("index list: %v", err)
	}
	for _, want := range []string{"dune-2021", "shogun", "Dune", "series"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q: %q", want, out)
		}
	}
}

func TestIndexAddIdempotent(t *testing.T) {
	cfgPath := writeTestConfig(t)
	payload := writeTestPayload(t)

	for i := 0; i < 2; i++ {
		if out, err := runCommand(t, "index", "add", payload, "--config", cfgPath); err != nil {
			t.Fatalf("index add (pass %d): %v\n%s", i+1, err, out)
		}
	}

	out, err := runCommand(t, "index", "show", "dune-2021", "--config", cfgPath)
	if err != nil {
		t.Fatalf("index show: %v", err)
	}
	if got := strings.Count(out, "Dune.2021.WEB.x264.srt"); got != 1 {
		t.Errorf("subtitle listed %d times after double ingest, want 1\n%s", got, out)
	}
}

func TestIndexShowUnknownSlug(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCommand(t, "index", "show", "missing-slug", "--config", cfgPath); err == nil {
		t.Fatal("expected error for unknown slug")
	}
}

func TestResolveCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)
	payload := writeTestPayload(t)

	if out, err := runCommand(t, "index", "add", payload, "--config", cfgPath); err != nil {
		t.Fatalf("index add: %v\n%s", err, out)
	}

	out, err := runCommand(t, "resolve", "Dune.2021.WEB.x264.mkv", "--config", cfgPath)
	if err != nil {
		t.Fatalf("resolve: %v\n%s", err, out)
	}
	if !strings.Contains(out, "matched Dune (2021)") {
		t.Errorf("missing match line: %q", out)
	}
	if !strings.Contains(out, "Dune.2021.WEB.x264.srt") {
		t.Errorf("missing candidate origin file: %q", out)
	}

	out, err = runCommand(t, "resolve", "--json", "Shogun.S01E03.720p.WEB.mkv", "--config", cfgPath)
	if err != nil {
		t.Fatalf("resolve --json: %v\n%s", err, out)
	}
	for _, want := range []string{`"slug": "shogun"`, `"season": 1`, `"episode": 3`} {
		if !strings.Contains(out, want) {
			t.Errorf("json output missing %s: %q", want, out)
		}
	}
}

func TestResolveCommandNotFound(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCommand(t, "resolve", "Totally.Unknown.2001.WEB.mkv", "--config", cfgPath); err == nil {
		t.Fatal("expected error for unknown title")
	}
}
