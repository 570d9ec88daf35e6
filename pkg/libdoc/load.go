package libdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Wire shapes of the libdoc JSON spec.
// Only the fields the generator consumes are decoded; everything else is ignored.

type specFile struct {
	Name      string         `json:"name"`
	Doc       string         `json:"doc"`
	Version   string         `json:"version"`
	Type      string         `json:"type"`
	DocFormat string         `json:"docFormat"`
	Source    string         `json:"source"`
	Keywords  []specKeyword  `json:"keywords"`
	DataTypes *specDataTypes `json:"dataTypes"`
	Typedocs  []specTypedoc  `json:"typedocs"`
}

type specKeyword struct {
	Name string    `json:"name"`
	Doc  string    `json:"doc"`
	Args []specArg `json:"args"`
}

type specArg struct {
	Name         string          `json:"name"`
	Types        []string        `json:"types"`
	Type         *specTypeInfo   `json:"type"`
	DefaultValue json.RawMessage `json:"defaultValue"`
	Kind         string          `json:"kind"`
	Required     bool            `json:"required"`
}

// specTypeInfo is the Robot Framework 6+ argument type tree.
type specTypeInfo struct {
	Name   string         `json:"name"`
	Union  bool           `json:"union"`
	Nested []specTypeInfo `json:"nested"`
}

type specDataTypes struct {
	Enums []specEnum `json:"enums"`
}

type specTypedoc struct {
	Type string `json:"type"`
	specEnum
}

type specEnum struct {
	Name    string       `json:"name"`
	Doc     string       `json:"doc"`
	Members []specMember `json:"members"`
}

type specMember struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// Load reads a single libdoc JSON spec file.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec: %w", err)
	}

	var spec specFile
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse spec %s: %w", path, err)
	}

	lib := spec.toLibrary()
	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spec %s: %w", path, err)
	}

	return lib, nil
}

// LoadAll loads every path in order. The returned slice preserves the input order,
// which is the order the generator processes libraries in.
func LoadAll(paths []string) ([]*Library, error) {
	libs := make([]*Library, 0, len(paths))
	for _, path := range paths {
		lib, err := Load(path)
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

// Decode reads either one spec object or a JSON array of spec objects.
func Decode(r io.Reader) ([]*Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read specs: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty spec document")
	}

	var specs []specFile
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &specs); err != nil {
			return nil, fmt.Errorf("failed to parse spec array: %w", err)
		}
	} else {
		var spec specFile
		if err := json.Unmarshal(trimmed, &spec); err != nil {
			return nil, fmt.Errorf("failed to parse spec: %w", err)
		}
		specs = append(specs, spec)
	}

	libs := make([]*Library, 0, len(specs))
	for i := range specs {
		lib := specs[i].toLibrary()
		if err := lib.Validate(); err != nil {
			return nil, fmt.Errorf("invalid spec %d: %w", i, err)
		}
		libs = append(libs, lib)
	}

	return libs, nil
}

func (s *specFile) toLibrary() *Library {
	lib := &Library{
		Name:      s.Name,
		Doc:       s.Doc,
		Version:   s.Version,
		Type:      Type(strings.ToUpper(s.Type)),
		DocFormat: strings.ToUpper(s.DocFormat),
		Source:    s.Source,
		Keywords:  make([]*Keyword, 0, len(s.Keywords)),
		DataTypes: []*EnumType{},
	}
	if lib.Type == "" {
		lib.Type = TypeLibrary
	}

	for _, kw := range s.Keywords {
		keyword := &Keyword{Name: kw.Name, Doc: kw.Doc, Args: make([]*Argument, 0, len(kw.Args))}
		for _, arg := range kw.Args {
			keyword.Args = append(keyword.Args, arg.toArgument())
		}
		lib.Keywords = append(lib.Keywords, keyword)
	}

	// RF 4 lists enums under dataTypes, RF 5+ under typedocs. First declaration wins.
	seen := make(map[string]bool)
	addEnum := func(e specEnum) {
		if e.Name == "" || seen[e.Name] {
			return
		}
		seen[e.Name] = true
		lib.DataTypes = append(lib.DataTypes, e.toEnumType())
	}
	if s.DataTypes != nil {
		for _, e := range s.DataTypes.Enums {
			addEnum(e)
		}
	}
	for _, td := range s.Typedocs {
		if td.Type == "Enum" {
			addEnum(td.specEnum)
		}
	}

	return lib
}

func (a *specArg) toArgument() *Argument {
	arg := &Argument{
		Name:     a.Name,
		Kind:     a.Kind,
		Required: a.Required,
		Types:    append([]string{}, a.Types...),
	}

	if len(arg.Types) == 0 && a.Type != nil {
		arg.Types = a.Type.candidates()
	}

	if value, ok := rawString(a.DefaultValue); ok {
		arg.HasDefault = true
		arg.Default = value
	}

	return arg
}

// candidates flattens a type tree into ordered type names.
// Unions contribute their members, never the synthetic "Union" name.
func (t *specTypeInfo) candidates() []string {
	if !t.Union || len(t.Nested) == 0 {
		if t.Name == "" {
			return []string{}
		}
		return []string{t.Name}
	}

	names := []string{}
	for i := range t.Nested {
		names = append(names, t.Nested[i].candidates()...)
	}
	return names
}

func (e *specEnum) toEnumType() *EnumType {
	enum := &EnumType{Name: e.Name, Doc: e.Doc, Members: make([]Member, 0, len(e.Members))}
	for _, m := range e.Members {
		value, _ := rawString(m.Value)
		enum.Members = append(enum.Members, Member{Name: m.Name, Value: value})
	}
	return enum
}

// rawString renders a JSON scalar as text. JSON null and absent values report false.
func rawString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s, true
	}
	return string(trimmed), true
}
