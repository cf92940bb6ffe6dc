/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog provides the stencil palette and the default port/protocol
// labels for connections between stencil types. The built-in catalog is an
// embedded YAML document; alternative catalogs can be parsed from files.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"topodraw/internal/domain"
)

//go:embed stencils.yaml
var builtin []byte

// Stencil is one placeable palette item.
type Stencil struct {
	Type         string `yaml:"type"`
	Label        string `yaml:"label"`
	Icon         string `yaml:"icon"`
	DefaultColor string `yaml:"defaultColor"`
}

// IsZone reports whether nodes created from s are container zones.
func (s Stencil) IsZone() bool { return s.Type == domain.ZoneType }

// Size returns the creation size class: zones 300x200, everything else 120x96.
func (s Stencil) Size() (w, h float64) {
	if s.IsZone() {
		return domain.ZoneWidth, domain.ZoneHeight
	}
	return domain.NodeWidth, domain.NodeHeight
}

// Color returns the stencil colour or the default slate.
func (s Stencil) Color() string {
	if s.DefaultColor == "" {
		return domain.DefaultColor
	}
	return s.DefaultColor
}

// Category groups stencils in the palette.
type Category struct {
	ID    string    `yaml:"id"`
	Name  string    `yaml:"name"`
	Items []Stencil `yaml:"items"`
}

type portTable struct {
	FromIntermediary map[string]string `yaml:"fromIntermediary"`
	ToIntermediary   map[string]string `yaml:"toIntermediary"`
	Pairs            map[string]string `yaml:"pairs"`
}

// Catalog is an immutable stencil palette plus port lookup table.
type Catalog struct {
	Categories     []Category `yaml:"categories"`
	Intermediaries []string   `yaml:"intermediaries"`
	Ports          portTable  `yaml:"ports"`
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded stencils.yaml: %v", err))
	}
	return c
})

// Default returns the built-in catalog.
func Default() *Catalog { return defaultCatalog() }

// Parse decodes a catalog YAML document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			if it.Type == "" {
				return nil, fmt.Errorf("parse catalog: category %q has an item without type", cat.ID)
			}
		}
	}
	return &c, nil
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Lookup returns the first stencil of the given type.
func (c *Catalog) Lookup(typ string) (Stencil, bool) {
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			if it.Type == typ {
				return it, true
			}
		}
	}
	return Stencil{}, false
}

// Find returns the stencil with the given type and label; zones share a
// type and differ by label.
func (c *Catalog) Find(typ, label string) (Stencil, bool) {
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			if it.Type == typ && (label == "" || it.Label == label) {
				return it, true
			}
		}
	}
	return Stencil{}, false
}

func (c *Catalog) intermediary(typ string) bool { return slices.Contains(c.Intermediaries, typ) }

// PortInfo returns the advisory port/protocol label for a source->target
// pair, or "" when the table has none. Rules apply in order: leaving an
// intermediary (firewall, router, ...), entering one, then direct pairs.
func (c *Catalog) PortInfo(sourceType, targetType string) string {
	if c.intermediary(sourceType) {
		if v, ok := c.Ports.FromIntermediary[targetType]; ok {
			return v
		}
	}
	if c.intermediary(targetType) {
		if v, ok := c.Ports.ToIntermediary[sourceType]; ok {
			return v
		}
	}
	return c.Ports.Pairs[sourceType+":"+targetType]
}
