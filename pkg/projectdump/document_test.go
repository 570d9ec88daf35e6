package projectdump

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal read-back view of the emitted document.
type dumpXML struct {
	XMLName    xml.Name `xml:"project-dump"`
	Version    string   `xml:"version,attr"`
	Repository string   `xml:"repository,attr"`
	Details    struct {
		Name        string `xml:"name"`
		CreatedTime string `xml:"createdTime"`
		Settings    struct {
			Inner []struct {
				XMLName xml.Name
				Value   string `xml:",chardata"`
			} `xml:",any"`
		} `xml:"settings"`
	} `xml:"details"`
	Attachments []struct {
		PK       string `xml:"pk"`
		Name     string `xml:"name"`
		Filename string `xml:"filename"`
	} `xml:"attachments>attachment"`
	TestObjectVersion struct {
		PK       string       `xml:"pk"`
		Elements []elementXML `xml:"test-elements>element"`
	} `xml:"testobjectversions>testobjectversion"`
}

type elementXML struct {
	Type        string `xml:"type,attr"`
	PK          string `xml:"pk"`
	Name        string `xml:"name"`
	UID         string `xml:"uid"`
	Description string `xml:"description"`
	HistoryPK   string `xml:"historyPK"`
	References  []struct {
		AttachmentRef struct {
			PK string `xml:"pk,attr"`
		} `xml:"attachment-ref"`
	} `xml:"references>reference"`
	Children []elementXML `xml:"element"`
	Classes  []struct {
		PK       string `xml:"pk"`
		Ordering string `xml:"ordering"`
		Default  struct {
			PK string `xml:"pk,attr"`
		} `xml:"default-representative-ref"`
		Representatives []struct {
			PK       string `xml:"pk"`
			Name     string `xml:"name"`
			Value    string `xml:"value"`
			Ordering string `xml:"ordering"`
		} `xml:"representatives>representative"`
	} `xml:"equivalence-classes>equivalence-class"`
	Parameters []struct {
		PK      string `xml:"pk"`
		Name    string `xml:"name"`
		TypeRef struct {
			PK string `xml:"pk,attr"`
		} `xml:"datatype-ref"`
		DefinitionType string  `xml:"definition-type"`
		UseType        string  `xml:"use-type"`
		Default        *string `xml:"default-value"`
	} `xml:"parameters>parameter"`
}

func parseDump(t *testing.T, doc *Document) dumpXML {
	t.Helper()
	data, err := doc.Bytes()
	require.NoError(t, err)

	var out dumpXML
	require.NoError(t, xml.Unmarshal(data, &out))
	return out
}

func TestDocument_Header(t *testing.T) {
	doc, _ := assemble(t, testOptions(), calcLibrary())

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(xml.Header)))

	out := parseDump(t, doc)
	assert.Equal(t, "2.6.1", out.Version)
	assert.Equal(t, "itba", out.Repository)
	assert.Equal(t, "RF Import", out.Details.Name)
	assert.Equal(t, "2021-03-01 12:00:00 +0100", out.Details.CreatedTime)
	assert.Equal(t, "231", out.TestObjectVersion.PK)

	require.Len(t, out.Details.Settings.Inner, len(DefaultSettings()))
	for i, s := range DefaultSettings() {
		assert.Equal(t, s.Key, out.Details.Settings.Inner[i].XMLName.Local)
		assert.Equal(t, s.Value, out.Details.Settings.Inner[i].Value)
	}
}

func TestDocument_ElementTree(t *testing.T) {
	doc, _ := assemble(t, testOptions(), calcLibrary())
	out := parseDump(t, doc)

	require.Len(t, out.TestObjectVersion.Elements, 1)
	group := out.TestObjectVersion.Elements[0]
	assert.Equal(t, "subdivision", group.Type)
	assert.Equal(t, "RF", group.Name)
	assert.Equal(t, "-1", group.HistoryPK)

	require.Len(t, group.Children, 1)
	lib := group.Children[0]
	require.Len(t, lib.Children, 2)

	mode := lib.Children[0]
	assert.Equal(t, "datatype", mode.Type)
	assert.Equal(t, "234", mode.PK)
	assert.Regexp(t, `^itba-DT-[0-9a-f]{10}$`, mode.UID)
	require.Len(t, mode.Classes, 1)
	class := mode.Classes[0]
	assert.Equal(t, "1024", class.Ordering)
	require.Len(t, class.Representatives, 2)
	assert.Equal(t, "FAST", class.Representatives[0].Name)
	assert.Equal(t, "1", class.Representatives[0].Value)
	assert.Equal(t, "2048", class.Representatives[1].Ordering)
	assert.Equal(t, class.Representatives[0].PK, class.Default.PK)

	run := lib.Children[1]
	assert.Equal(t, "interaction", run.Type)
	require.Len(t, run.Parameters, 1)
	param := run.Parameters[0]
	assert.Equal(t, "mode", param.Name)
	assert.Equal(t, "234", param.TypeRef.PK)
	assert.Equal(t, "ByReference", param.DefinitionType)
	assert.Equal(t, "In", param.UseType)
	assert.Nil(t, param.Default)
}

func TestDocument_UnresolvedRendersSentinel(t *testing.T) {
	lib := calcLibrary()
	lib.DataTypes = nil

	doc, _ := assemble(t, testOptions(), lib)
	out := parseDump(t, doc)

	run := out.TestObjectVersion.Elements[0].Children[0].Children[0]
	assert.Equal(t, "-1", run.Parameters[0].TypeRef.PK)
}

func TestDocument_EscapesText(t *testing.T) {
	lib := calcLibrary()
	lib.Doc = `Compares a < b & "c"`

	doc, _ := assemble(t, testOptions(), lib)
	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), "a &lt; b &amp;")

	out := parseDump(t, doc)
	assert.Equal(t, lib.Doc, out.TestObjectVersion.Elements[0].Children[0].Description)
}

func TestDocument_WriteTo(t *testing.T) {
	doc, _ := assemble(t, testOptions(), calcLibrary())

	t.Run("writes the serialized bytes", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := doc.WriteTo(&buf)
		require.NoError(t, err)

		expected, err := doc.Bytes()
		require.NoError(t, err)
		assert.Equal(t, int64(len(expected)), n)
		assert.Equal(t, expected, buf.Bytes())
	})

	t.Run("propagates writer failure", func(t *testing.T) {
		_, err := doc.WriteTo(failingWriter{})
		assert.Error(t, err)
	})
}

func TestDocument_AttachmentsBlock(t *testing.T) {
	doc, _ := assemble(t, testOptions(), calcLibrary())
	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "<attachments>"), "no block without attachments")

	att := &Attachment{PK: 300, Resource: "common", Source: "x", Filename: "common.resource"}
	doc.Attachments = []*Attachment{att}
	run := doc.Find(KindInteraction, "Run")
	run.References = []Reference{{Attachment: att}}

	out := parseDump(t, doc)
	require.Len(t, out.Attachments, 1)
	assert.Equal(t, "300", out.Attachments[0].PK)
	assert.Equal(t, "common.resource", out.Attachments[0].Filename)

	parsed := out.TestObjectVersion.Elements[0].Children[0].Children[1]
	require.Len(t, parsed.References, 1)
	assert.Equal(t, "300", parsed.References[0].AttachmentRef.PK)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}
