package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"firestige.xyz/rtde/internal/rtde"
)

// Declarative recipe file: named groups of (field-name, field-type) pairs.
//
//	recipes:
//	  - key: state
//	    fields:
//	      - { name: timestamp, type: DOUBLE }
//	      - { name: digital_input_bits, type: UINT32 }
//
// The file is purely an adapter over the programmatic recipe builder:
// parsing produces the same name/type lists BuildRecipe takes, so both
// entry points share one validation path.
type recipeFile struct {
	Recipes []recipeGroup `yaml:"recipes"`
}

type recipeGroup struct {
	Key    string        `yaml:"key"`
	Fields []recipeEntry `yaml:"fields"`
}

type recipeEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func parseRecipeFile(path string) ([]recipeGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file %s: %w", path, err)
	}
	var rf recipeFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse recipe file %s: %w", path, err)
	}
	if len(rf.Recipes) == 0 {
		return nil, fmt.Errorf("%w: recipe file %s defines no recipes", rtde.ErrConfig, path)
	}
	return rf.Recipes, nil
}

func (g recipeGroup) lists() (names, types []string) {
	names = make([]string, len(g.Fields))
	types = make([]string, len(g.Fields))
	for i, f := range g.Fields {
		names[i] = f.Name
		types[i] = f.Type
	}
	return names, types
}

// LoadRecipe builds the named recipe group from a declarative file.
func LoadRecipe(path, key string, dir rtde.Direction) (*rtde.Recipe, error) {
	groups, err := parseRecipeFile(path)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.Key == key {
			names, types := g.lists()
			r, err := rtde.BuildRecipe(dir, names, types)
			if err != nil {
				return nil, fmt.Errorf("recipe %q: %w", key, err)
			}
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: recipe %q not found in %s", rtde.ErrConfig, key, path)
}

// RecipeSummary describes one validated recipe group.
type RecipeSummary struct {
	Key    string
	Fields int
}

// ValidateRecipeFile builds every group in the file and reports a summary
// per group. Used for offline pre-checking before touching a controller.
func ValidateRecipeFile(path string) ([]RecipeSummary, error) {
	groups, err := parseRecipeFile(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(groups))
	out := make([]RecipeSummary, 0, len(groups))
	for _, g := range groups {
		if _, dup := seen[g.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate recipe key %q in %s", rtde.ErrConfig, g.Key, path)
		}
		seen[g.Key] = struct{}{}
		names, types := g.lists()
		if _, err := rtde.BuildRecipe(rtde.DirectionOutput, names, types); err != nil {
			return nil, fmt.Errorf("recipe %q: %w", g.Key, err)
		}
		out = append(out, RecipeSummary{Key: g.Key, Fields: len(g.Fields)})
	}
	return out, nil
}
