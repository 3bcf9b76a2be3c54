/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scattergories

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed categories.yaml
var defaultCategories []byte

// Category is one entry in the pool. Examples are reference material only.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Group    string   `yaml:"group" json:"group,omitempty"`
	Examples []string `yaml:"examples" json:"examples,omitempty"`
}

// Pool is the set of categories turns draw from.
type Pool []Category

type poolFile struct {
	Categories []Category `yaml:"categories"`
}

// DefaultPool returns the built-in category pool.
func DefaultPool() Pool {
	p, err := ParsePool(defaultCategories)
	if err != nil {
		panic("scattergories: invalid built-in categories: " + err.Error())
	}
	return p
}

// LoadPool reads a YAML category file from path.
func LoadPool(path string) (Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p, err := ParsePool(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePool decodes a YAML category document. Names are trimmed and must be
// unique, and the pool must be large enough for a turn.
func ParsePool(data []byte) (Pool, error) {
	var f poolFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(f.Categories))
	pool := make(Pool, 0, len(f.Categories))
	for i, c := range f.Categories {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("category %d has no name", i+1)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate category %q", c.Name)
		}
		seen[c.Name] = true
		pool = append(pool, c)
	}

	if len(pool) < CategoriesPerTurn {
		return nil, fmt.Errorf("%w: have %d categories, need %d", ErrPoolTooSmall, len(pool), CategoriesPerTurn)
	}

	return pool, nil
}

// Names returns the category names in file order.
func (p Pool) Names() []string {
	names := make([]string, len(p))
	for i, c := range p {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a category by name.
func (p Pool) Lookup(name string) (Category, bool) {
	for _, c := range p {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
