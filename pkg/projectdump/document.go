package projectdump

import (
	"bytes"
	"io"
	"strconv"

	"github.com/dyluth/libdoc2tb/pkg/projectdump/markup"
)

// Sentinel written into historyPK and identicalVersionPK of freshly imported elements.
const freshImportPK = "-1"

// Header holds everything emitted before the test elements.
type Header struct {
	SchemaVersion string
	BuildNumber   string
	Repository    string
	Project       Project
	Version       TestObjectVersion
	Settings      []Setting
	Created       string
}

// Document is a fully assembled project-dump, ready to serialize.
type Document struct {
	Header      Header
	VersionPK   PK
	Attachments []*Attachment
	Groups      []*Element
}

// Find returns the first element with the given kind and name in document order.
func (d *Document) Find(kind Kind, name string) *Element {
	for _, g := range d.Groups {
		if el := g.Find(kind, name); el != nil {
			return el
		}
	}
	return nil
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	w := markup.NewWriter(&buf)

	d.writeHeader(w)
	d.writeAttachments(w)
	d.writeVersion(w)
	d.writeFooter(w)

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo serializes the whole document before writing any byte to dst,
// so a serialization failure never leaves partial output behind.
func (d *Document) WriteTo(dst io.Writer) (int64, error) {
	data, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := dst.Write(data)
	return int64(n), err
}

func (d *Document) writeHeader(w *markup.Writer) {
	h := d.Header
	w.Start("project-dump",
		markup.A("version", h.SchemaVersion),
		markup.A("build-number", h.BuildNumber),
		markup.A("repository", h.Repository))

	w.Start("details")
	w.Element("name", h.Project.Name)
	w.Element("id", "")
	w.Element("testobjectname", h.Project.TestObjectName)
	w.Element("state", h.Project.State)
	w.Elements("customername", "customeradress", "contactperson", "testlab", "checklocation", "startdate", "enddate")
	w.Element("status", h.Project.State)
	w.Element("description", h.Project.Description)
	w.Element("html-description", "")
	w.Element("testingIntelligence", "false")
	w.Element("createdTime", h.Created)
	w.Start("settings")
	for _, s := range h.Settings {
		w.Element(s.Key, s.Value)
	}
	w.End("settings")
	w.Elements("requirement-repositories", "requirement-projects", "requirement-udfs")
	w.End("details")

	w.Elements("userroles", "keywords")
	w.Start("labels")
	w.Elements("public", "private")
	w.End("labels")
	w.Element("references", "")
}

func (d *Document) writeAttachments(w *markup.Writer) {
	if len(d.Attachments) == 0 {
		return
	}
	w.Start("attachments")
	for _, att := range d.Attachments {
		w.Start("attachment")
		w.Element("pk", att.PK.String())
		w.Element("name", att.Resource)
		w.Element("filename", att.Filename)
		w.End("attachment")
	}
	w.End("attachments")
}

func (d *Document) writeVersion(w *markup.Writer) {
	h := d.Header
	w.Start("testobjectversions")
	w.Start("testobjectversion")
	w.Element("pk", d.VersionPK.String())
	w.Element("id", h.Version.ID)
	w.Element("startdate", h.Version.StartDate)
	w.Element("enddate", "")
	w.Element("status", h.Project.State)
	w.Element("createdTime", h.Created)
	w.Element("description", h.Version.Description)
	w.Element("html-description", "")
	w.Element("testingIntelligence", "false")
	w.Elements("baselines", "placeholders", "variantsDefinitions", "variantsMarkers",
		"placeholderValues", "testcycles", "testthemes")

	w.Start("test-elements")
	for _, g := range d.Groups {
		writeElement(w, g)
	}
	w.End("test-elements")

	w.End("testobjectversion")
	w.End("testobjectversions")
}

func (d *Document) writeFooter(w *markup.Writer) {
	w.Element("requirements", "")
	w.Element("referenced-user-names", "")
	w.Elements("errors", "warnings")
	w.End("project-dump")
}

func writeElement(w *markup.Writer, e *Element) {
	w.Start("element", markup.A("type", string(e.Kind)))
	w.Element("pk", e.PK.String())
	w.Element("name", e.Name)
	w.Element("uid", e.UID)
	w.Element("locker", "")
	w.Element("description", e.Description)
	w.Element("html-description", e.HTMLDescription)
	w.Element("historyPK", freshImportPK)
	w.Element("identicalVersionPK", freshImportPK)
	writeReferences(w, e.References)

	switch e.Kind {
	case KindSubdivision:
		for _, child := range e.Children {
			writeElement(w, child)
		}
	case KindDataType:
		if e.DataType != nil {
			writeEquivalenceClasses(w, e.DataType.EquivalenceClasses)
		}
	case KindInteraction:
		if e.Interaction != nil {
			writeParameters(w, e.Interaction.Parameters)
		}
	}

	w.End("element")
}

func writeReferences(w *markup.Writer, refs []Reference) {
	if len(refs) == 0 {
		w.Element("references", "")
		return
	}
	w.Start("references")
	for _, ref := range refs {
		w.Start("reference")
		w.Element("attachment-ref", "", markup.A("pk", ref.Attachment.PK.String()))
		w.Element("filename", ref.Attachment.Filename)
		w.End("reference")
	}
	w.End("references")
}

func writeEquivalenceClasses(w *markup.Writer, classes []EquivalenceClass) {
	w.Start("equivalence-classes")
	for _, class := range classes {
		w.Start("equivalence-class")
		w.Element("pk", class.PK.String())
		w.Element("name", class.Name)
		w.Element("ordering", strconv.Itoa(class.Ordering))
		w.Element("default-representative-ref", "", markup.A("pk", class.DefaultRepresentative.String()))
		w.Start("representatives")
		for _, rep := range class.Representatives {
			w.Start("representative")
			w.Element("pk", rep.PK.String())
			w.Element("name", rep.Name)
			w.Element("value", rep.Value)
			w.Element("ordering", strconv.Itoa(rep.Ordering))
			w.End("representative")
		}
		w.End("representatives")
		w.End("equivalence-class")
	}
	w.End("equivalence-classes")
}

func writeParameters(w *markup.Writer, params []Parameter) {
	w.Start("parameters")
	for _, p := range params {
		w.Start("parameter")
		w.Element("pk", p.PK.String())
		w.Element("name", p.Name)
		w.Element("datatype-ref", "", markup.A("pk", p.DataType.String()))
		w.Element("definition-type", p.DefinitionType)
		w.Element("use-type", p.UseType)
		if p.HasDefault {
			w.Element("default-value", p.Default)
			w.Element("default-representative-ref", "", markup.A("pk", p.DefaultRepresentative.String()))
		}
		w.End("parameter")
	}
	w.End("parameters")
}
