package projectdump

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DumpEntryName is the name of the document inside a project-dump archive.
const DumpEntryName = "project-dump.xml"

// Format selects how a document is packaged on disk.
type Format string

const (
	// FormatZip packages the document and attachments in a zip archive
	FormatZip Format = "zip"

	// FormatXML writes the bare document
	FormatXML Format = "xml"
)

// FormatForPath picks the packaging from the file extension: .xml is bare XML,
// anything else is a zip archive.
func FormatForPath(p string) Format {
	if strings.EqualFold(filepath.Ext(p), ".xml") {
		return FormatXML
	}
	return FormatZip
}

// AttachmentEntryName returns the archive path of an attachment file.
func AttachmentEntryName(att *Attachment) string {
	return path.Join("attachments", att.PK.String(), att.Filename)
}

// WriteArchive writes a zip archive with the document and every attachment file.
func WriteArchive(w io.Writer, doc *Document) error {
	data, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("failed to serialize project-dump: %w", err)
	}

	zw := zip.NewWriter(w)

	entry, err := zw.Create(DumpEntryName)
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("failed to write archive entry: %w", err)
	}

	for _, att := range doc.Attachments {
		if err := addFile(zw, AttachmentEntryName(att), att.Source); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

// WriteFile writes the document to dst in the given format. Output goes to a
// temporary file in the destination directory that is renamed over dst only
// after everything was written, so dst is never left half-written.
func WriteFile(dst string, doc *Document, format Format) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".libdoc2tb-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	switch format {
	case FormatXML:
		if _, err = doc.WriteTo(tmp); err != nil {
			return fmt.Errorf("failed to write project-dump: %w", err)
		}
	case FormatZip:
		if err = WriteArchive(tmp, doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, name, source string) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingSource, err)
	}
	defer f.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", name, err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("failed to copy %s into archive: %w", source, err)
	}
	return nil
}
