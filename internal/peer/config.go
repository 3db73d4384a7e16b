package peer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rca-orchestrator/orchestrator/internal/orcherr"
)

// builtinKeywords holds the default per-peer keyword lists from spec.md
// §4.F, used when peers.yaml declares a built-in peer name without its own
// keywords: entry.
var builtinKeywords = map[string][]string{
	"jenkins": {
		"jenkins", "pipeline", "build job", "jenkins job", "jenkinsfile", "ci/cd pipeline",
	},
	"kubernetes": {
		"kubernetes", "k8s", "pod", "deployment", "kubectl", "namespace", "container", "helm", "kube",
	},
}

// peersFile mirrors the top-level structure of peers.yaml.
type peersFile struct {
	Peers map[string]Descriptor `yaml:"peers"`
}

// LoadConfig reads and parses peers.yaml from path. The Name field of each
// Descriptor is populated from the map key, not from any YAML field, and
// peer order is recorded separately — map iteration in Go is unordered, but
// spec.md §4.F's tie-break ("first registered peer wins") and §4.G's
// "registration order" require a deterministic order. Order is taken from
// the order keys physically appear in the YAML document.
func LoadConfig(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &orcherr.ConfigError{Msg: fmt.Sprintf("read peers config %q", path), Err: err}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &orcherr.ConfigError{Msg: fmt.Sprintf("parse peers config %q", path), Err: err}
	}

	var file peersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &orcherr.ConfigError{Msg: fmt.Sprintf("parse peers config %q", path), Err: err}
	}

	order := documentOrder(&root, "peers")

	descs := make([]Descriptor, 0, len(file.Peers))
	for _, name := range order {
		cfg, ok := file.Peers[name]
		if !ok {
			continue
		}
		cfg.Name = name
		if len(cfg.Keywords) == 0 {
			if kw, ok := builtinKeywords[strings.ToLower(name)]; ok {
				cfg.Keywords = kw
			}
		}
		applyEnvOverrides(&cfg)
		descs = append(descs, cfg)
	}
	return descs, nil
}

// applyEnvOverrides layers the per-peer environment variables spec.md §6
// documents (<PEER>_MCP_URL, <PEER>_MCP_ENABLED, GITHUB_TOKEN) on top of
// whatever peers.yaml declares, so operators can keep descriptors/keywords
// in version control while injecting environment-specific URLs and
// credentials at deploy time.
func applyEnvOverrides(cfg *Descriptor) {
	prefix := strings.ToUpper(cfg.Name)

	if v := os.Getenv(prefix + "_MCP_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv(prefix + "_MCP_ENABLED"); v != "" {
		cfg.Enabled = v == "true"
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" && strings.EqualFold(cfg.Name, "github") {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		cfg.Headers["Authorization"] = "Bearer " + token
	}
}

// documentOrder walks a parsed YAML document node and returns the keys of
// the mapping found under the given top-level key, in document order.
func documentOrder(root *yaml.Node, key string) []string {
	if len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != key {
			continue
		}
		mapping := doc.Content[i+1]
		if mapping.Kind != yaml.MappingNode {
			return nil
		}
		var names []string
		for j := 0; j < len(mapping.Content); j += 2 {
			names = append(names, mapping.Content[j].Value)
		}
		return names
	}
	return nil
}
