// Package content loads authored game data into engine structures.
package content

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/statforge/internal/stats"
)

type effectsFile struct {
	Effects []yaml.Node `yaml:"effects"`
}

// LoadEffects reads an effect catalog file. Templates are drawn from
// arena a, which must not be used by any worker afterwards: the catalog
// is shared read-only and workers clone from it.
func LoadEffects(path string, a *stats.Arena) (*stats.EffectCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading effects %s: %w", path, err)
	}

	cat, err := ParseEffects(data, a)
	if err != nil {
		return nil, fmt.Errorf("parsing effects %s: %w", path, err)
	}

	slog.Info("loaded effects", "path", path, "count", cat.Len())
	return cat, nil
}

// ParseEffects decodes a document of the form
//
//	effects:
//	  - id: haste
//	    duration: {condition_type: Timed, duration: 10}
//	    modifiers:
//	      - {stat: speed, op: PercentAdd, value: 0.2}
//
// Conditions with unknown types are dropped by the codec. A duplicate
// or missing id fails the whole load.
func ParseEffects(data []byte, a *stats.Arena) (*stats.EffectCatalog, error) {
	var file effectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	cat := stats.NewEffectCatalog()
	for i := range file.Effects {
		n := &file.Effects[i]
		def, err := a.DecodeEffect(n)
		if err != nil {
			return nil, err
		}
		if err := cat.Add(def); err != nil {
			a.ReleaseEffect(def)
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
	}
	return cat, nil
}

// CheckEffects reports authoring mistakes the engine tolerates at run
// time: modifiers with unregistered operators and effects without
// modifiers. A nil result means the catalog is clean.
func CheckEffects(cat *stats.EffectCatalog, ops *stats.OpRegistry) error {
	var errs []error
	for _, id := range cat.IDs() {
		def, _ := cat.Get(id)
		if len(def.Modifiers) == 0 {
			errs = append(errs, fmt.Errorf("effect %s: no modifiers", id))
		}
		for i, mod := range def.Modifiers {
			if _, ok := ops.Lookup(mod.Op); !ok {
				errs = append(errs, fmt.Errorf("effect %s: modifier %d: unknown operator %q", id, i, mod.Op))
			}
		}
	}
	return errors.Join(errs...)
}
