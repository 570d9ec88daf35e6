package projectdump

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dyluth/libdoc2tb/pkg/libdoc"
)

// ErrMissingSource is returned when a resource must be attached but its
// source file is not available.
var ErrMissingSource = errors.New("resource source file missing")

// Assembler converts libraries into a project-dump Document.
// Each call to Assemble uses a fresh Session, so identical input and options
// always produce identical keys.
type Assembler struct {
	opts   Options
	logger *slog.Logger
}

// NewAssembler creates an assembler. Zero-valued optional fields get defaults.
func NewAssembler(opts Options) *Assembler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Describe == nil {
		opts.Describe = PlainDescription
	}
	return &Assembler{opts: opts, logger: logger}
}

// PlainDescription uses the documentation as description and leaves the HTML description empty.
func PlainDescription(doc, _ string) (string, string) {
	return doc, ""
}

// Assemble builds the complete document in memory. Libraries are processed in the
// given order within their group (libraries first, then resources). A parameter
// can only reference data types of libraries processed before it, or of its own library.
func (a *Assembler) Assemble(libs []*libdoc.Library) (*Document, *Report, error) {
	if err := a.opts.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}

	s := NewSession(a.opts.Seed, a.opts.Repository)
	report := newReport()

	doc := &Document{
		Header:    a.header(),
		VersionPK: s.Keys.Next(),
	}

	var libraries, resources []*libdoc.Library
	for _, lib := range libs {
		if lib == nil {
			return nil, nil, fmt.Errorf("nil library in input")
		}
		if lib.IsResource() {
			resources = append(resources, lib)
		} else {
			libraries = append(libraries, lib)
		}
	}

	for _, g := range []struct {
		group Group
		libs  []*libdoc.Library
	}{
		{a.opts.LibraryGroup, libraries},
		{a.opts.ResourceGroup, resources},
	} {
		if len(g.libs) == 0 {
			continue
		}

		root := s.NewElement(KindSubdivision, QualifiedName{}, g.group.Name, g.group.Name)
		root.Description = g.group.Description
		report.count(root)

		for _, lib := range g.libs {
			el, err := a.library(s, root, lib, report)
			if err != nil {
				return nil, nil, err
			}
			root.Children = append(root.Children, el)
		}

		doc.Groups = append(doc.Groups, root)
	}

	doc.Attachments = s.Resolver.Attachments()

	report.Attachments = len(doc.Attachments)
	report.KeysIssued = s.Keys.Issued()
	for _, name := range s.Collisions() {
		report.Collisions = append(report.Collisions, name.String())
		a.logger.Debug("Qualified name registered twice, later element wins", "name", name.String())
	}

	a.logger.Debug("Assembled project-dump",
		"libraries", report.Libraries,
		"elements", report.TotalElements(),
		"unresolved", len(report.Unresolved),
		"keys", report.KeysIssued)

	return doc, report, nil
}

// library emits one library subdivision: its data types, then its interactions.
// The order matters: every data type and member of the library is registered
// before the first parameter of the library is resolved.
func (a *Assembler) library(s *Session, group *Element, lib *libdoc.Library, report *Report) (*Element, error) {
	attach := a.opts.AttachResources && lib.IsResource()
	if attach {
		if err := checkSource(lib); err != nil {
			return nil, err
		}
	}

	el := s.NewElement(KindSubdivision, group.QualifiedName, lib.Name, group.Name)
	el.Description, el.HTMLDescription = a.opts.Describe(lib.Doc, lib.DocFormat)
	if lib.Version != "" {
		el.Description = withVersion(el.Description, lib.Version)
	}
	report.Libraries++
	report.count(el)

	for typeIndex, enum := range lib.DataTypes {
		dt := a.dataType(s, lib, enum, typeIndex)
		report.count(dt)
		el.Children = append(el.Children, dt)
	}

	for _, kw := range lib.Keywords {
		ia := a.interaction(s, el, lib, kw, attach, report)
		report.count(ia)
		el.Children = append(el.Children, ia)
	}

	return el, nil
}

// dataType converts an enum into a data type with one equivalence class.
// typeIndex orders the class among its sibling data types; memberIndex orders
// representatives within the class. The two counters are independent.
func (a *Assembler) dataType(s *Session, lib *libdoc.Library, enum *libdoc.EnumType, typeIndex int) *Element {
	dt := s.NewElement(KindDataType, QualifiedName{}, enum.Name, lib.Name)
	dt.Description, dt.HTMLDescription = a.opts.Describe(enum.Doc, lib.DocFormat)

	class := EquivalenceClass{
		PK:                    s.Keys.Next(),
		Name:                  equivalenceClassName,
		Ordering:              (typeIndex + 1) * orderingStep,
		DefaultRepresentative: Unresolved,
		Representatives:       make([]Representative, 0, len(enum.Members)),
	}

	for memberIndex, member := range enum.Members {
		rep := s.NewRepresentative(dt, member.Name, member.Value, (memberIndex+1)*orderingStep)
		class.Representatives = append(class.Representatives, rep)
	}

	if len(class.Representatives) > 0 {
		class.DefaultRepresentative = class.Representatives[0].PK
	}

	dt.DataType = &DataTypePayload{EquivalenceClasses: []EquivalenceClass{class}}
	return dt
}

func (a *Assembler) interaction(s *Session, owner *Element, lib *libdoc.Library, kw *libdoc.Keyword, attach bool, report *Report) *Element {
	ia := s.NewElement(KindInteraction, owner.QualifiedName, kw.Name, lib.Name)
	ia.Description, ia.HTMLDescription = a.opts.Describe(kw.Doc, lib.DocFormat)

	if attach {
		att := s.Resolver.Attachment(lib.Name, lib.Source, filepath.Base(lib.Source))
		ia.References = append(ia.References, Reference{Attachment: att})
	}

	params := make([]Parameter, 0, len(kw.Args))
	for _, arg := range kw.Args {
		p := Parameter{
			PK:                    s.Keys.Next(),
			Name:                  arg.Name,
			DefinitionType:        DefinitionTypeReference,
			UseType:               UseTypeInput,
			DefaultRepresentative: Unresolved,
		}
		p.DataType, p.TypeName = s.Resolver.ParameterType(arg.Types)

		if !p.DataType.IsResolved() {
			if len(arg.Types) == 0 {
				report.Untyped++
			} else {
				report.Unresolved = append(report.Unresolved, UnresolvedReference{
					Library:   lib.Name,
					Keyword:   kw.Name,
					Parameter: arg.Name,
					Types:     append([]string(nil), arg.Types...),
				})
				a.logger.Debug("Unresolved parameter type",
					"library", lib.Name,
					"keyword", kw.Name,
					"parameter", arg.Name,
					"types", arg.Types)
			}
		}

		if arg.HasDefault {
			p.HasDefault = true
			p.Default = arg.Default
			if p.TypeName != "" {
				p.DefaultRepresentative = s.Resolver.Representative(p.TypeName, arg.Default)
			}
		}

		params = append(params, p)
	}

	ia.Interaction = &InteractionPayload{Parameters: params}
	return ia
}

func (a *Assembler) header() Header {
	created := a.opts.CreatedTime
	if created.IsZero() {
		created = time.Now()
	}
	return Header{
		SchemaVersion: a.opts.SchemaVersion,
		BuildNumber:   a.opts.BuildNumber,
		Repository:    a.opts.Repository,
		Project:       a.opts.Project,
		Version:       a.opts.Version,
		Settings:      append([]Setting(nil), a.opts.Settings...),
		Created:       created.Format(CreatedTimeLayout),
	}
}

func checkSource(lib *libdoc.Library) error {
	if lib.Source == "" {
		return fmt.Errorf("%w: resource '%s' has no source path", ErrMissingSource, lib.Name)
	}
	info, err := os.Stat(lib.Source)
	if err != nil {
		return fmt.Errorf("%w: resource '%s': %v", ErrMissingSource, lib.Name, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: resource '%s': %s is a directory", ErrMissingSource, lib.Name, lib.Source)
	}
	return nil
}

func withVersion(description, version string) string {
	if description == "" {
		return "Version: " + version
	}
	return description + "\n\nVersion: " + version
}
