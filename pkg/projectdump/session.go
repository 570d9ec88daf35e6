package projectdump

// Session is the mutable state of exactly one assembly: the key allocator,
// the registry and the resolver built on them. A session is created per
// assembly and never shared, so keys never leak between runs.
type Session struct {
	Keys       *KeyAllocator
	Registry   *Registry
	Resolver   *Resolver
	repository string
	collisions []QualifiedName
}

// NewSession creates a fresh session whose first key is seed+1.
func NewSession(seed int64, repository string) *Session {
	keys := NewKeyAllocator(seed)
	registry := NewRegistry()
	return &Session{
		Keys:       keys,
		Registry:   registry,
		Resolver:   newResolver(registry, keys),
		repository: repository,
	}
}

// NewElement allocates a key for a new element and registers it under its
// qualified name before returning, so references to it resolve from then on.
// owner only contributes to the qualified name; pass the zero QualifiedName for
// root-named elements.
func (s *Session) NewElement(kind Kind, owner QualifiedName, name, library string) *Element {
	e := &Element{
		PK:            s.Keys.Next(),
		Kind:          kind,
		Name:          name,
		QualifiedName: owner.Child(name),
		UID:           ExternalID(kind, name, library, s.repository),
	}
	s.register(e.QualifiedName, e.PK)
	return e
}

// NewRepresentative allocates and registers one member of a data type
// under "{type}.{member}".
func (s *Session) NewRepresentative(dataType *Element, name, value string, ordering int) Representative {
	rep := Representative{
		PK:            s.Keys.Next(),
		Name:          name,
		Value:         value,
		Ordering:      ordering,
		QualifiedName: dataType.QualifiedName.Child(name),
	}
	s.register(rep.QualifiedName, rep.PK)
	return rep
}

// Collisions returns the names that were registered more than once.
func (s *Session) Collisions() []QualifiedName {
	return append([]QualifiedName(nil), s.collisions...)
}

func (s *Session) register(name QualifiedName, pk PK) {
	if s.Registry.Register(name, pk) {
		s.collisions = append(s.collisions, name)
	}
}
