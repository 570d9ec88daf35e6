package projectdump

import "strings"

// nameSeparator joins qualified-name segments inside map keys.
// It is a control character so dots, spaces and underscores inside names
// never produce the same key as a nested name.
const nameSeparator = "\x1f"

// QualifiedName identifies an element by its owner chain, for example
// the member ADD of type Operator is Name("Operator", "ADD").
type QualifiedName struct {
	key string
}

// Name builds a qualified name from its segments, outermost first.
func Name(segments ...string) QualifiedName {
	return QualifiedName{key: strings.Join(segments, nameSeparator)}
}

// Child returns the qualified name of local nested under q.
// The zero QualifiedName has no segments, so its child is a root name.
func (q QualifiedName) Child(local string) QualifiedName {
	if q.key == "" {
		return Name(local)
	}
	return QualifiedName{key: q.key + nameSeparator + local}
}

// Segments returns the name segments, outermost first.
func (q QualifiedName) Segments() []string {
	if q.key == "" {
		return nil
	}
	return strings.Split(q.key, nameSeparator)
}

// IsZero reports whether q has no segments.
func (q QualifiedName) IsZero() bool {
	return q.key == ""
}

// String renders the name dot-separated.
func (q QualifiedName) String() string {
	return strings.ReplaceAll(q.key, nameSeparator, ".")
}

// Registry maps qualified names to the keys allocated for them.
// A later registration under the same name replaces the earlier key.
type Registry struct {
	entries map[QualifiedName]PK
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[QualifiedName]PK)}
}

// Register records pk under name and reports whether an earlier entry was replaced.
func (r *Registry) Register(name QualifiedName, pk PK) (replaced bool) {
	_, replaced = r.entries[name]
	r.entries[name] = pk
	return replaced
}

// Lookup returns the key registered under name, or Unresolved.
func (r *Registry) Lookup(name QualifiedName) PK {
	if pk, ok := r.entries[name]; ok {
		return pk
	}
	return Unresolved
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.entries)
}
