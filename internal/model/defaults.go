package model

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// seedFile mirrors defaults.yaml.
type seedFile struct {
	Organizations []Organization `yaml:"organizations"`
	Folders       []Folder       `yaml:"folders"`
	Bookmarks     []Bookmark     `yaml:"bookmarks"`
}

// ParseSeed decodes a YAML seed dataset into a fresh AppState.
func ParseSeed(data []byte) (*AppState, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	state := NewAppState()
	state.Organizations = append(state.Organizations, seed.Organizations...)
	state.Folders = append(state.Folders, seed.Folders...)
	for _, b := range seed.Bookmarks {
		b.Ports = ClonePorts(b.Ports)
		state.Bookmarks = append(state.Bookmarks, b)
	}
	return state, nil
}

// DefaultState returns the built-in example dataset used when nothing has
// been persisted yet.
func DefaultState() *AppState {
	state, err := ParseSeed(defaultsYAML)
	if err != nil {
		// defaults.yaml is compiled in; failing here is a build defect.
		panic(err)
	}
	return state
}
