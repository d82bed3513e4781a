package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// manifest selects a subset of the built-in cases and optionally overrides
// the complaint substring each one is expected to produce.
type manifest struct {
	Cases []manifestCase `yaml:"cases"`
}

type manifestCase struct {
	Name   string `yaml:"name"`
	Expect string `yaml:"expect,omitempty"`
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Cases) == 0 {
		return nil, fmt.Errorf("manifest %s selects no cases", path)
	}
	return &m, nil
}

// apply filters the built-in case list down to the manifest's selection.
func (m *manifest) apply(builtin []smokeCase) ([]smokeCase, error) {
	byName := make(map[string]smokeCase, len(builtin))
	for _, c := range builtin {
		byName[c.name] = c
	}
	out := make([]smokeCase, 0, len(m.Cases))
	for _, mc := range m.Cases {
		c, ok := byName[mc.Name]
		if !ok {
			return nil, fmt.Errorf("manifest names unknown case %q", mc.Name)
		}
		if mc.Expect != "" {
			c.expect = mc.Expect
		}
		out = append(out, c)
	}
	return out, nil
}
