// Package markup writes a tree of named elements and attributes as XML.
//
// Writer mirrors a start/element/end emission style: regions are opened with
// Start, leaf elements are written with Element, and regions are closed with End.
// The writer keeps the open regions on a stack and refuses to close a region that
// is not the innermost open one.
//
// Errors are sticky: after the first failure every call is a no-op and Close
// reports the error, so callers can emit a whole document and check once.
package markup

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ErrUnbalanced is returned when End does not match the innermost open region,
// or when Close is called with regions still open.
var ErrUnbalanced = errors.New("unbalanced markup")

// ErrInvalidName is returned when an element or attribute name is not a valid XML name.
var ErrInvalidName = errors.New("invalid markup name")

// Attr is one element attribute. Attributes are written in the order given.
type Attr struct {
	Name  string
	Value string
}

// A builds an Attr.
func A(name, value string) Attr {
	return Attr{Name: name, Value: value}
}

// Writer emits indented XML with a declaration header.
type Writer struct {
	enc     *xml.Encoder
	stack   []string
	started bool
	out     io.Writer
	err     error
}

// NewWriter creates a writer. Nothing is written until the first call.
func NewWriter(w io.Writer) *Writer {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &Writer{enc: enc, out: w}
}

// Depth returns the number of open regions.
func (w *Writer) Depth() int {
	return len(w.stack)
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Start opens a region.
func (w *Writer) Start(name string, attrs ...Attr) {
	if !w.begin() || !w.checkNames(name, attrs) {
		return
	}
	w.err = w.enc.EncodeToken(startElement(name, attrs))
	if w.err == nil {
		w.stack = append(w.stack, name)
	}
}

// End closes the innermost region, which must be named name.
func (w *Writer) End(name string) {
	if !w.begin() {
		return
	}
	if len(w.stack) == 0 {
		w.err = fmt.Errorf("%w: end '%s' without open region", ErrUnbalanced, name)
		return
	}
	if top := w.stack[len(w.stack)-1]; top != name {
		w.err = fmt.Errorf("%w: end '%s' while '%s' is open", ErrUnbalanced, name, top)
		return
	}
	w.err = w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
	w.stack = w.stack[:len(w.stack)-1]
}

// Element writes a leaf element with text content. Empty text yields <name></name>.
func (w *Writer) Element(name, text string, attrs ...Attr) {
	if !w.begin() || !w.checkNames(name, attrs) {
		return
	}
	if w.err = w.enc.EncodeToken(startElement(name, attrs)); w.err != nil {
		return
	}
	if text != "" {
		if w.err = w.enc.EncodeToken(xml.CharData(text)); w.err != nil {
			return
		}
	}
	w.err = w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

// Elements writes one empty leaf element per name.
func (w *Writer) Elements(names ...string) {
	for _, name := range names {
		w.Element(name, "")
	}
}

// Close verifies every region was closed and flushes buffered output.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if len(w.stack) > 0 {
		w.err = fmt.Errorf("%w: %d region(s) still open, innermost '%s'", ErrUnbalanced, len(w.stack), w.stack[len(w.stack)-1])
		return w.err
	}
	if w.err = w.enc.Flush(); w.err != nil {
		return w.err
	}
	_, w.err = io.WriteString(w.out, "\n")
	return w.err
}

// begin writes the XML declaration on first use and reports whether writing may continue.
func (w *Writer) begin() bool {
	if w.err != nil {
		return false
	}
	if !w.started {
		w.started = true
		if _, err := io.WriteString(w.out, xml.Header); err != nil {
			w.err = err
			return false
		}
	}
	return true
}

// checkNames records ErrInvalidName for the first invalid name and reports whether all are valid.
func (w *Writer) checkNames(name string, attrs []Attr) bool {
	if !ValidName(name) {
		w.err = fmt.Errorf("%w: element '%s'", ErrInvalidName, name)
		return false
	}
	for _, a := range attrs {
		if !ValidName(a.Name) {
			w.err = fmt.Errorf("%w: attribute '%s' of '%s'", ErrInvalidName, a.Name, name)
			return false
		}
	}
	return true
}

func startElement(name string, attrs []Attr) xml.StartElement {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	for _, a := range attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	return start
}
