package projectdump

// Attachment is a resource file linked from the interactions of that resource.
type Attachment struct {
	PK       PK
	Resource string // Owning resource name, the memoization key
	Source   string // Filesystem path of the resource file
	Filename string // Base name written into the document
}

// Resolver turns declared names into keys using the session registry.
type Resolver struct {
	registry    *Registry
	keys        *KeyAllocator
	attachments map[string]*Attachment
	order       []*Attachment
}

func newResolver(registry *Registry, keys *KeyAllocator) *Resolver {
	return &Resolver{
		registry:    registry,
		keys:        keys,
		attachments: make(map[string]*Attachment),
	}
}

// ParameterType returns the key of the first candidate type name present in the
// registry, together with the matching name. With no match it returns Unresolved
// and an empty name.
func (r *Resolver) ParameterType(candidates []string) (PK, string) {
	for _, candidate := range candidates {
		if pk := r.registry.Lookup(Name(candidate)); pk.IsResolved() {
			return pk, candidate
		}
	}
	return Unresolved, ""
}

// Representative returns the key registered for member of typeName, or Unresolved.
func (r *Resolver) Representative(typeName, member string) PK {
	return r.registry.Lookup(Name(typeName, member))
}

// Attachment returns the attachment of resource, allocating its key on first use.
// Later calls for the same resource return the same attachment.
func (r *Resolver) Attachment(resource, source, filename string) *Attachment {
	if att, ok := r.attachments[resource]; ok {
		return att
	}

	att := &Attachment{
		PK:       r.keys.Next(),
		Resource: resource,
		Source:   source,
		Filename: filename,
	}
	r.attachments[resource] = att
	r.order = append(r.order, att)
	return att
}

// Attachments returns every allocated attachment in allocation order.
func (r *Resolver) Attachments() []*Attachment {
	return append([]*Attachment(nil), r.order...)
}
