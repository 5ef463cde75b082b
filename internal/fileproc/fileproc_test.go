package fileproc

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zipEntry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.name)
		require.NoError(t, err)
		_, err = f.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestProcessTextFile(t *testing.T) {
	record, err := Process("main.py", []byte("import flask\napp = flask.Flask(__name__)\n"))

	require.NoError(t, err)
	assert.Equal(t, "main.py", record.Name)
	assert.Equal(t, "text/x-python", record.Type)
	assert.Equal(t, int64(41), record.Size)
	assert.Contains(t, record.Content, "import flask")
	assert.Empty(t, record.EmbeddedImages)
}

func TestProcessBinaryFile(t *testing.T) {
	record, err := Process("app.bin", []byte{0x7f, 0x45, 0x4c, 0x46, 0x00, 0x01})

	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", record.Type)
	assert.Empty(t, record.Content)
	assert.Empty(t, record.EmbeddedImages)
}

func TestProcessStandaloneImage(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	record, err := Process("system-diagram.png", data)

	require.NoError(t, err)
	assert.Equal(t, "image/png", record.Type)
	assert.Empty(t, record.Content)
	require.Len(t, record.EmbeddedImages, 1)

	img := record.EmbeddedImages[0]
	assert.Equal(t, "system-diagram.png", img.Name)
	assert.Equal(t, "upload", img.Source)
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), img.Data)
	assert.Equal(t, "architecture", img.Placement.Section)
}

func TestProcessDocx(t *testing.T) {
	documentXML := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Deployment Pipeline Overview</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>The service ships as a docker image.</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	// Media placed before the document body to exercise archive-order
	// independence, and out of name order to exercise sorting.
	data := buildZip(t, []zipEntry{
		{"word/media/image2.png", []byte{2, 2}},
		{"word/media/image1.png", []byte{1, 1}},
		{"word/document.xml", []byte(documentXML)},
		{"word/media/notes.txt", []byte("skipped")},
	})

	record, err := Process("runbook.docx", data)

	require.NoError(t, err)
	assert.Contains(t, record.Content, "Deployment Pipeline Overview")
	assert.Contains(t, record.Content, "The service ships as a docker image.")
	assert.Contains(t, record.Content, "\n")

	require.Len(t, record.EmbeddedImages, 2)
	assert.Equal(t, "image1.png", record.EmbeddedImages[0].Name)
	assert.Equal(t, "image2.png", record.EmbeddedImages[1].Name)
	for _, img := range record.EmbeddedImages {
		assert.Equal(t, "docx", img.Source)
		assert.Contains(t, img.Context, "runbook.docx")
		assert.Contains(t, img.Context, "docker image")
		assert.Equal(t, "deployment", img.Placement.Section)
	}
}

func TestProcessPptx(t *testing.T) {
	slide := func(text string) []byte {
		return []byte(`<p:sld><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sld>`)
	}

	data := buildZip(t, []zipEntry{
		{"ppt/slides/slide2.xml", slide("Endpoint request flow")},
		{"ppt/slides/slide1.xml", slide("API surface introduction")},
		{"ppt/media/chart.png", []byte{9, 9}},
	})

	record, err := Process("api-deck.pptx", data)

	require.NoError(t, err)
	first := strings.Index(record.Content, "API surface introduction")
	second := strings.Index(record.Content, "Endpoint request flow")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)

	require.Len(t, record.EmbeddedImages, 1)
	img := record.EmbeddedImages[0]
	assert.Equal(t, "pptx", img.Source)
	assert.Contains(t, img.Context, "api surface introduction")
	assert.Equal(t, "api", img.Placement.Section)
}

func TestProcessCorruptArchive(t *testing.T) {
	_, err := Process("broken.docx", []byte("not a zip archive"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.docx")
}

func TestClipBoundsExtractedText(t *testing.T) {
	long := strings.Repeat("a", maxExtractedChars+500)
	record, err := Process("big.txt", []byte(long))

	require.NoError(t, err)
	assert.Len(t, record.Content, maxExtractedChars)
}

func TestStripXMLTags(t *testing.T) {
	in := `<w:p><w:r><w:t>First line</w:t></w:r></w:p><w:p><w:r><w:t>Second   line</w:t></w:r></w:p>`
	assert.Equal(t, "First line\nSecond line", stripXMLTags(in))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/markdown", contentType("README.md"))
	assert.Equal(t, "application/yaml", contentType("deploy.YAML"))
	assert.Equal(t, "application/octet-stream", contentType("archive.tar.gz"))
}

func TestPlacementFor(t *testing.T) {
	tests := []struct {
		name     string
		context  string
		file     string
		expected string
	}{
		{"architecture_keyword", "system topology notes", "img.png", "architecture"},
		{"deployment_keyword", "kubernetes rollout", "img.png", "deployment"},
		{"ui_keyword", "login screenshot", "img.png", "user interface"},
		{"api_keyword", "request sequence", "img.png", "api"},
		{"filename_match", "", "wireframe.png", "user interface"},
		{"no_match", "quarterly report", "photo.png", "overview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, placementFor(tt.context, tt.file).Section)
		})
	}
}
