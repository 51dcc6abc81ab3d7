// Package library loads named, already-proven theorems from TOML
// manifest files so they can be cited by a proof's "theorem" rule.
// Manifests may include other manifest files by relative path, the same
// recursively-includable shape the host project uses for its world data
// manifests.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
)

// MaxIncludeDepth bounds how many manifest files may be chained via
// "include" before loading is refused, mirroring the host project's
// manifest-recursion guard.
const MaxIncludeDepth = 32

var (
	// ErrTooDeep is returned when a chain of "include" directives exceeds
	// MaxIncludeDepth.
	ErrTooDeep = errors.New("library: manifest inclusion chain too deep")

	// ErrCircular is returned when a manifest's includes refer back to a
	// file already being loaded.
	ErrCircular = errors.New("library: manifest inclusion chain refers back to itself")
)

// theoremEntry is the on-disk shape of one theorem record.
type theoremEntry struct {
	ID         string   `toml:"id"`
	Name       string   `toml:"name"`
	Premises   []string `toml:"premises"`
	Conclusion string   `toml:"conclusion"`
}

// manifestFile is the on-disk shape of one manifest, either listing
// theorems directly or including other manifest files (or both).
type manifestFile struct {
	Include  []string       `toml:"include"`
	Theorems []theoremEntry `toml:"theorem"`
}

// Library is an in-memory collection of proof.ProvenTheorem records
// loaded from one or more manifest files, keyed by theorem ID. It
// implements proof.Library.
type Library struct {
	theorems map[string]proof.ProvenTheorem
	order    []string
}

// Theorem resolves id to a ProvenTheorem, satisfying proof.Library.
func (l *Library) Theorem(id string) (proof.ProvenTheorem, bool) {
	th, ok := l.theorems[id]
	return th, ok
}

// List returns every loaded theorem in the order first encountered.
func (l *Library) List() []proof.ProvenTheorem {
	out := make([]proof.ProvenTheorem, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.theorems[id])
	}
	return out
}

// Load reads the manifest file at path, recursively following any
// "include" directives relative to the directory containing the
// including file, and returns the combined set of theorems.
func Load(path string) (*Library, error) {
	lib := &Library{theorems: make(map[string]proof.ProvenTheorem)}
	if err := loadInto(lib, path, map[string]bool{}, 0); err != nil {
		return nil, err
	}
	return lib, nil
}

func loadInto(lib *Library, path string, seen map[string]bool, depth int) error {
	if depth > MaxIncludeDepth {
		return ErrTooDeep
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("library: %s: %w", path, err)
	}
	if seen[abs] {
		return ErrCircular
	}
	seen[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("library: %s: %w", path, err)
	}

	var mf manifestFile
	if err := toml.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("library: %s: %w", path, err)
	}

	if err := addTheorems(lib, path, mf.Theorems); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	for _, inc := range mf.Include {
		incPath := inc
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(dir, inc)
		}
		if err := loadInto(lib, incPath, seen, depth+1); err != nil {
			return err
		}
	}

	return nil
}

func addTheorems(lib *Library, path string, entries []theoremEntry) error {
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("library: %s: theorem %q has no id", path, e.Name)
		}
		if _, exists := lib.theorems[e.ID]; exists {
			return fmt.Errorf("library: %s: duplicate theorem id %q", path, e.ID)
		}

		premises := make([]logic.Formula, 0, len(e.Premises))
		for _, p := range e.Premises {
			f, perr := logic.Parse(p)
			if perr != nil {
				return fmt.Errorf("library: %s: theorem %q: premise %q: %w", path, e.ID, p, perr)
			}
			premises = append(premises, f)
		}

		conclusion, perr := logic.Parse(e.Conclusion)
		if perr != nil {
			return fmt.Errorf("library: %s: theorem %q: conclusion %q: %w", path, e.ID, e.Conclusion, perr)
		}

		lib.theorems[e.ID] = proof.ProvenTheorem{
			ID:         e.ID,
			Name:       e.Name,
			Premises:   premises,
			Conclusion: conclusion,
		}
		lib.order = append(lib.order, e.ID)
	}
	return nil
}
