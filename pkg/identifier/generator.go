// Package identifier derives unique, human readable identifiers of the form
// first.last@namespace from persona display names.
//
// Generation is deterministic: the same name, namespace and used set always
// produce the same identifier. Collisions are resolved by appending a counter
// to the local-part (ana.silva, ana.silva1, ana.silva2, ...).
//
// Basic usage:
//
//	used := identifier.NewSet("ana.silva@acme.com")
//	id, err := identifier.Generate("Ana Silva", "acme.com", used)
//	// id == "ana.silva1@acme.com", and used now contains it
package identifier

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxProbes is the number of candidates tried for one base name, counting the
// unsuffixed candidate. With MaxProbes = 100 the last candidate is base99.
const MaxProbes = 100

// Generation errors
var (
	ErrInvalidName        = errors.New("display name has no usable letters")
	ErrExhaustedNamespace = errors.New("no unused identifier left for base name")
)

// Set holds identifiers that are already allocated.
type Set map[string]struct{}

// NewSet creates a set pre-populated with ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id is allocated.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add marks id as allocated.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// LocalPart returns the undisambiguated local-part for a display name:
// "first.last", or "first" when the name has a single token. Middle tokens
// are dropped.
func LocalPart(displayName string) (string, error) {
	tokens := Tokens(displayName)
	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, displayName)
	}

	first := tokens[0]
	if len(tokens) == 1 {
		return first, nil
	}
	return first + "." + tokens[len(tokens)-1], nil
}

// Generate returns the first unused identifier for displayName in namespace
// and records it in used. The caller owns used; it must not be shared between
// goroutines without external locking.
func Generate(displayName, namespace string, used Set) (string, error) {
	base, err := LocalPart(displayName)
	if err != nil {
		return "", err
	}
	if used == nil {
		used = Set{}
	}

	candidate := base + "@" + namespace
	for counter := 1; used.Has(candidate); counter++ {
		if counter >= MaxProbes {
			return "", fmt.Errorf("%w: %s@%s", ErrExhaustedNamespace, base, namespace)
		}
		candidate = base + strconv.Itoa(counter) + "@" + namespace
	}

	used.Add(candidate)
	return candidate, nil
}

// Generator binds a namespace and a used set for batch callers.
type Generator struct {
	namespace string
	used      Set
}

// NewGenerator creates a generator over used. A nil set starts empty.
func NewGenerator(namespace string, used Set) *Generator {
	if used == nil {
		used = Set{}
	}
	return &Generator{namespace: namespace, used: used}
}

// Next generates the identifier for displayName.
func (g *Generator) Next(displayName string) (string, error) {
	return Generate(displayName, g.namespace, g.used)
}

// Namespace returns the namespace identifiers are generated in.
func (g *Generator) Namespace() string {
	return g.namespace
}

// Used returns the set of allocated identifiers, including those handed out
// by Next.
func (g *Generator) Used() Set {
	return g.used
}
