package projectdump

// Report summarizes one assembly for user feedback, metrics and history.
type Report struct {
	Libraries       int
	Elements        map[Kind]int
	Representatives int
	Parameters      int
	Attachments     int
	KeysIssued      int64

	// Unresolved lists typed parameters whose types matched no registered name.
	Unresolved []UnresolvedReference

	// Untyped counts parameters without any declared type; they resolve to Unresolved too.
	Untyped int

	// Collisions lists qualified names that were registered more than once.
	Collisions []string
}

// UnresolvedReference is one parameter type that could not be resolved.
type UnresolvedReference struct {
	Library   string
	Keyword   string
	Parameter string
	Types     []string
}

func newReport() *Report {
	return &Report{Elements: make(map[Kind]int)}
}

// TotalElements returns the number of typed elements in the document.
func (r *Report) TotalElements() int {
	total := 0
	for _, n := range r.Elements {
		total += n
	}
	return total
}

func (r *Report) count(e *Element) {
	r.Elements[e.Kind]++
	if e.DataType != nil {
		for _, class := range e.DataType.EquivalenceClasses {
			r.Representatives += len(class.Representatives)
		}
	}
	if e.Interaction != nil {
		r.Parameters += len(e.Interaction.Parameters)
	}
}
