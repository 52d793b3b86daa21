package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultDirectionsYAML = `# direction catalog
directions:
  - title: Backend
    stages: 4
  - title: Frontend
    stages: 4
  - title: Design
    stages: 3
  - title: Mobile
    stages: 4
`

// DirectionSeed is one entry of the direction catalog file.
type DirectionSeed struct {
	Title  string `yaml:"title"`
	Stages int    `yaml:"stages"`
}

type directionCatalog struct {
	Directions []DirectionSeed `yaml:"directions"`
}

// LoadDirectionCatalog reads the catalog at path, or the built-in catalog when
// path is empty.
func LoadDirectionCatalog(path string) ([]DirectionSeed, error) {
	data := []byte(defaultDirectionsYAML)
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read direction catalog: %w", err)
		}
		data = raw
	}
	return ParseDirectionCatalog(data)
}

func ParseDirectionCatalog(data []byte) ([]DirectionSeed, error) {
	var catalog directionCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("config: parse direction catalog: %w", err)
	}
	if len(catalog.Directions) == 0 {
		return nil, errors.New("config: direction catalog is empty")
	}
	seen := make(map[string]struct{}, len(catalog.Directions))
	for i, seed := range catalog.Directions {
		title := strings.TrimSpace(seed.Title)
		if title == "" {
			return nil, fmt.Errorf("config: direction %d has no title", i)
		}
		if seed.Stages < 0 {
			return nil, fmt.Errorf("config: direction %q has negative stage count", title)
		}
		key := strings.ToLower(title)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("config: duplicate direction %q", title)
		}
		seen[key] = struct{}{}
		catalog.Directions[i].Title = title
	}
	return catalog.Directions, nil
}
