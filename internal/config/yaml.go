package config

import (
	"fmt"
	"os"

	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/validate"
	"gopkg.in/yaml.v3"
)

// Limits applied to .commitgen.yml.
const (
	MaxConfigBytes = 1 << 20
	maxYAMLDepth   = 32
	maxYAMLNodes   = 10000
)

// allowedTags are the core-schema tags; anything else is rejected before
// decoding.
var allowedTags = map[string]bool{
	"!!map":       true,
	"!!seq":       true,
	"!!str":       true,
	"!!int":       true,
	"!!float":     true,
	"!!bool":      true,
	"!!null":      true,
	"!!timestamp": true,
	"!!binary":    true,
	"!!merge":     true,
}

// ReadFile loads and parses a YAML configuration file. A missing file
// yields an empty map.
func ReadFile(path validate.Path) (map[string]any, error) {
	info, err := os.Stat(path.String())
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, secerr.Wrap(secerr.CategoryIO, "cannot read configuration file", err)
	}
	if !info.Mode().IsRegular() {
		return nil, secerr.New(secerr.CategoryConfigMalformed, "configuration file is not a regular file")
	}
	if info.Size() > MaxConfigBytes {
		return nil, secerr.New(secerr.CategoryConfigTooLarge, "configuration file too large")
	}
	data, err := os.ReadFile(path.String())
	if err != nil {
		return nil, secerr.Wrap(secerr.CategoryIO, "cannot read configuration file", err)
	}
	return Parse(data)
}

// Parse decodes YAML as plain data. The document must be empty or a
// mapping; non-core tags, nesting deeper than the depth limit, and alias
// expansion beyond the node budget are rejected.
func Parse(data []byte) (map[string]any, error) {
	if len(data) > MaxConfigBytes {
		return nil, secerr.New(secerr.CategoryConfigTooLarge, "configuration file too large")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, secerr.Wrap(secerr.CategoryConfigMalformed, "invalid YAML syntax", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return map[string]any{}, nil
	}
	root := doc.Content[0]

	budget := maxYAMLNodes
	if err := checkNode(root, 0, &budget); err != nil {
		return nil, err
	}
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return map[string]any{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, secerr.New(secerr.CategoryConfigMalformed, "configuration must be a mapping")
	}

	var out map[string]any
	if err := root.Decode(&out); err != nil {
		return nil, secerr.Wrap(secerr.CategoryConfigMalformed, "configuration could not be decoded", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return normalize(out).(map[string]any), nil
}

func checkNode(n *yaml.Node, depth int, budget *int) error {
	if depth > maxYAMLDepth {
		return secerr.New(secerr.CategoryConfigMalformed, "configuration nested too deeply")
	}
	*budget--
	if *budget < 0 {
		return secerr.New(secerr.CategoryConfigMalformed, "configuration has too many nodes")
	}
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias == nil {
			return secerr.New(secerr.CategoryConfigMalformed, "dangling alias")
		}
		return checkNode(n.Alias, depth+1, budget)
	case yaml.DocumentNode:
	default:
		if tag := n.ShortTag(); !allowedTags[tag] {
			return secerr.Wrap(secerr.CategoryConfigMalformed, "unsupported YAML tag", fmt.Errorf("tag %q", tag))
		}
	}
	for _, c := range n.Content {
		if err := checkNode(c, depth+1, budget); err != nil {
			return err
		}
	}
	return nil
}

// normalize converts nested map[string]interface{} values decoded by
// yaml.v3 into map[string]any and []any consistently, stringifying
// non-string keys.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
