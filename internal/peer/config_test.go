package peer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "peers.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func TestLoadConfig_PreservesDocumentOrder(t *testing.T) {
	path := writeTestConfig(t, `
peers:
  zeta:
    url: "http://z"
    transport: sse
    enabled: true
  alpha:
    url: "http://a"
    transport: sse
    enabled: true
`)
	descs, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(descs))
	}
	if descs[0].Name != "zeta" || descs[1].Name != "alpha" {
		t.Errorf("order = [%s, %s], want [zeta, alpha] (document order, not alphabetical)",
			descs[0].Name, descs[1].Name)
	}
}

func TestLoadConfig_BuiltinKeywordsDefaultWhenOmitted(t *testing.T) {
	path := writeTestConfig(t, `
peers:
  jenkins:
    url: "http://j"
    transport: sse
    enabled: true
`)
	descs, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if len(descs[0].Keywords) == 0 {
		t.Error("expected built-in jenkins keywords to be applied, got none")
	}
}

func TestLoadConfig_ExplicitKeywordsOverrideBuiltin(t *testing.T) {
	path := writeTestConfig(t, `
peers:
  jenkins:
    url: "http://j"
    transport: sse
    enabled: true
    keywords:
      - custom-keyword
`)
	descs, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if len(descs[0].Keywords) != 1 || descs[0].Keywords[0] != "custom-keyword" {
		t.Errorf("Keywords = %v, want explicit override preserved", descs[0].Keywords)
	}
}

func TestLoadConfig_EnvOverridesURLAndEnabled(t *testing.T) {
	path := writeTestConfig(t, `
peers:
  jenkins:
    url: "http://default"
    transport: sse
    enabled: false
`)
	t.Setenv("JENKINS_MCP_URL", "http://overridden")
	t.Setenv("JENKINS_MCP_ENABLED", "true")

	descs, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if descs[0].URL != "http://overridden" {
		t.Errorf("URL = %q, want env override applied", descs[0].URL)
	}
	if !descs[0].Enabled {
		t.Error("Enabled = false, want env override to have enabled the peer")
	}
}

func TestLoadConfig_GitHubTokenInjectsBearerHeader(t *testing.T) {
	path := writeTestConfig(t, `
peers:
  github:
    url: "http://gh"
    transport: streamable-http
    enabled: true
`)
	t.Setenv("GITHUB_TOKEN", "secret123")

	descs, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if got := descs[0].Headers["Authorization"]; got != "Bearer secret123" {
		t.Errorf("Authorization header = %q", got)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
