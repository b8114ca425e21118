// Package catalog holds the static cultivation-guide catalog: an
// ordinary keyed mapping from plant to the states with a published
// guide document. Presentation concerns (how guides render) live with
// the client; this is only the lookup table behind the browse API.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/guides.yaml
var embedded []byte

var (
	ErrUnknownPlant = errors.New("catalog: unknown plant")
	ErrUnknownState = errors.New("catalog: no guide for state")
)

// Catalog is an immutable plant → states mapping.
type Catalog struct {
	plants map[string][]string
}

type fileFormat struct {
	Plants map[string][]string `yaml:"plants"`
}

// Default loads the embedded catalog shipped with the binary.
func Default() (*Catalog, error) {
	return parse(embedded)
}

// LoadFile loads a catalog from a YAML file, for deployments that
// override the embedded data.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(ff.Plants) == 0 {
		return nil, errors.New("catalog: no plants defined")
	}

	plants := make(map[string][]string, len(ff.Plants))
	for name, states := range ff.Plants {
		key := strings.ToLower(strings.TrimSpace(name))
		sorted := append([]string(nil), states...)
		sort.Strings(sorted)
		plants[key] = sorted
	}
	return &Catalog{plants: plants}, nil
}

// Plants returns all plant names, sorted.
func (c *Catalog) Plants() []string {
	out := make([]string, 0, len(c.plants))
	for name := range c.plants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// States returns the states with a guide for plant.
func (c *Catalog) States(plant string) ([]string, error) {
	states, ok := c.plants[strings.ToLower(plant)]
	if !ok {
		return nil, ErrUnknownPlant
	}
	return states, nil
}

// DocumentName resolves the guide document for a plant/state pair.
func (c *Catalog) DocumentName(plant, state string) (string, error) {
	plant = strings.ToLower(plant)
	states, ok := c.plants[plant]
	if !ok {
		return "", ErrUnknownPlant
	}
	state = strings.ToUpper(state)
	for _, s := range states {
		if s == state {
			return fmt.Sprintf("%s_%s.pdf", plant, state), nil
		}
	}
	return "", ErrUnknownState
}
