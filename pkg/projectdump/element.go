package projectdump

// Fixed parameter markers: every parameter is a declared-type input parameter.
const (
	DefinitionTypeReference = "ByReference"
	UseTypeInput            = "In"
)

// Ordering step between sibling equivalence classes and between representatives.
const orderingStep = 1024

// equivalenceClassName names the single class each data type carries.
const equivalenceClassName = "members"

// Element is one typed element of the test-element tree. Kind selects which
// payload is set: Children for subdivisions, DataType for data types,
// Interaction for interactions.
type Element struct {
	PK              PK
	Kind            Kind
	Name            string
	QualifiedName   QualifiedName
	UID             string
	Description     string
	HTMLDescription string
	References      []Reference

	Children    []*Element
	DataType    *DataTypePayload
	Interaction *InteractionPayload
}

// Reference links an element to an attachment.
type Reference struct {
	Attachment *Attachment
}

// DataTypePayload holds the equivalence classes of a data type.
type DataTypePayload struct {
	EquivalenceClasses []EquivalenceClass
}

// EquivalenceClass groups the representatives of one data type.
type EquivalenceClass struct {
	PK                    PK
	Name                  string
	Ordering              int
	DefaultRepresentative PK
	Representatives       []Representative
}

// Representative is one enum member inside an equivalence class.
type Representative struct {
	PK            PK
	Name          string
	Value         string
	Ordering      int
	QualifiedName QualifiedName
}

// InteractionPayload holds the ordered parameters of an interaction.
type InteractionPayload struct {
	Parameters []Parameter
}

// Parameter is one interaction parameter with its resolved data type.
type Parameter struct {
	PK             PK
	Name           string
	DataType       PK
	TypeName       string // Candidate that resolved, empty when DataType is Unresolved
	DefinitionType string
	UseType        string

	HasDefault            bool
	Default               string
	DefaultRepresentative PK
}

// Walk visits e and then its children, depth first in document order.
func (e *Element) Walk(visit func(*Element)) {
	visit(e)
	for _, child := range e.Children {
		child.Walk(visit)
	}
}

// Find returns the first element in document order with the given kind and name.
func (e *Element) Find(kind Kind, name string) *Element {
	var found *Element
	e.Walk(func(el *Element) {
		if found == nil && el.Kind == kind && el.Name == name {
			found = el
		}
	})
	return found
}
