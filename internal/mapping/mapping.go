// Package mapping loads the name remapping table and the province merge plan.
// Both ship as embedded YAML and can be replaced by files on disk.
package mapping

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
	"github.com/vnmap-dataprep/internal/pkg/validator"
)

//go:embed data/gadm_names.yaml
var defaultNameMap []byte

//go:embed data/merge_2025.yaml
var defaultMergePlan []byte

// NameMap translates source dataset names into canonical names.
type NameMap struct {
	Source string            `yaml:"source"`
	Names  map[string]string `yaml:"names" validate:"min=1,dive,keys,required,endkeys,required"`
}

// LoadNameMap reads the table at path, or the embedded default when path is empty.
func LoadNameMap(path string) (*NameMap, error) {
	data, err := readOrDefault(path, defaultNameMap)
	if err != nil {
		return nil, err
	}
	return ParseNameMap(data)
}

func ParseNameMap(data []byte) (*NameMap, error) {
	var m NameMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, apperrors.ErrInvalidMapping.Wrapf("parse name map: %w", err)
	}
	if err := validator.Validate(m); err != nil {
		return nil, apperrors.ErrInvalidMapping.Wrap(err)
	}
	return &m, nil
}

// Remap returns the canonical name; unknown names pass through unchanged.
func (m *NameMap) Remap(name string) string {
	if canonical, ok := m.Names[name]; ok {
		return canonical
	}
	return name
}

// Unmapped lists the distinct names that have no entry, sorted.
func (m *NameMap) Unmapped(names []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, n := range names {
		if _, ok := m.Names[n]; ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MergeUnit is one administrative unit of the new layout and the old provinces it absorbs.
type MergeUnit struct {
	Name    string   `yaml:"name" validate:"required"`
	Sources []string `yaml:"sources" validate:"min=1,dive,required"`
}

// MergePlan is an ordered list of units; output follows this order.
type MergePlan struct {
	Name  string      `yaml:"name"`
	Units []MergeUnit `yaml:"units" validate:"min=1,dive"`
}

// LoadMergePlan reads the plan at path, or the embedded 2025 plan when path is empty.
func LoadMergePlan(path string) (*MergePlan, error) {
	data, err := readOrDefault(path, defaultMergePlan)
	if err != nil {
		return nil, err
	}
	return ParseMergePlan(data)
}

func ParseMergePlan(data []byte) (*MergePlan, error) {
	var p MergePlan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, apperrors.ErrInvalidMapping.Wrapf("parse merge plan: %w", err)
	}
	if err := validator.Validate(p); err != nil {
		return nil, apperrors.ErrInvalidMapping.Wrap(err)
	}
	if _, err := p.sourceIndex(); err != nil {
		return nil, err
	}
	return &p, nil
}

// SourceOwners maps every source name to the unit that absorbs it.
func (p *MergePlan) SourceOwners() map[string]string {
	idx, _ := p.sourceIndex()
	return idx
}

// Check validates the plan against the names present in a dataset and returns
// the sources the dataset lacks, sorted.
func (p *MergePlan) Check(available []string) ([]string, error) {
	idx, err := p.sourceIndex()
	if err != nil {
		return nil, err
	}

	have := make(map[string]struct{}, len(available))
	for _, n := range available {
		have[n] = struct{}{}
	}

	var missing []string
	for src := range idx {
		if _, ok := have[src]; !ok {
			missing = append(missing, src)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

func (p *MergePlan) sourceIndex() (map[string]string, error) {
	idx := make(map[string]string)
	units := make(map[string]struct{}, len(p.Units))
	for _, u := range p.Units {
		if _, dup := units[u.Name]; dup {
			return nil, apperrors.ErrInvalidMapping.Wrapf("unit %q listed twice", u.Name)
		}
		units[u.Name] = struct{}{}

		for _, src := range u.Sources {
			if owner, dup := idx[src]; dup {
				return nil, apperrors.ErrInvalidMapping.Wrapf("source %q claimed by %q and %q", src, owner, u.Name)
			}
			idx[src] = u.Name
		}
	}
	return idx, nil
}

func readOrDefault(path string, def []byte) ([]byte, error) {
	if path == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrInputNotFound.Wrapf("mapping file %s: %w", path, err)
		}
		return nil, fmt.Errorf("read mapping file %s: %w", path, err)
	}
	return data, nil
}
