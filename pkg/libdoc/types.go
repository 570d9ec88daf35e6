package libdoc

import "fmt"

// Type distinguishes keyword libraries from resource files.
type Type string

const (
	// TypeLibrary is a keyword library implemented in code
	TypeLibrary Type = "LIBRARY"

	// TypeResource is a resource file with user keywords
	TypeResource Type = "RESOURCE"
)

// DocFormatHTML marks documentation that is already rendered to HTML.
const DocFormatHTML = "HTML"

// Library is one documented library or resource.
type Library struct {
	Name      string
	Doc       string
	Version   string
	Type      Type
	DocFormat string
	Source    string // Filesystem path of the library or resource file, may be empty
	Keywords  []*Keyword
	DataTypes []*EnumType
}

// IsResource reports whether the library is a resource file.
func (l *Library) IsResource() bool {
	return l.Type == TypeResource
}

// Keyword is one callable operation of a library.
type Keyword struct {
	Name string
	Doc  string
	Args []*Argument
}

// Argument is one keyword parameter.
// Types lists every spelling the argument is typed by, in declaration order.
type Argument struct {
	Name       string
	Types      []string
	Kind       string
	Required   bool
	HasDefault bool
	Default    string
}

// EnumType is an enumerated data type documented by a library.
type EnumType struct {
	Name    string
	Doc     string
	Members []Member
}

// Member is one enum member.
type Member struct {
	Name  string
	Value string
}

// Validate checks the minimum shape the generator relies on.
func (l *Library) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("library name is required")
	}

	if l.Type != TypeLibrary && l.Type != TypeResource {
		return fmt.Errorf("library '%s': invalid type: %s (must be '%s' or '%s')", l.Name, l.Type, TypeLibrary, TypeResource)
	}

	for i, kw := range l.Keywords {
		if kw == nil || kw.Name == "" {
			return fmt.Errorf("library '%s': keyword %d has no name", l.Name, i)
		}
	}

	for i, dt := range l.DataTypes {
		if dt == nil || dt.Name == "" {
			return fmt.Errorf("library '%s': data type %d has no name", l.Name, i)
		}
	}

	return nil
}
