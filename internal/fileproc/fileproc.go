package fileproc

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

// Maximum characters of extracted text kept per document.
const maxExtractedChars = 50000

var mimeByExtension = map[string]string{
	".py":   "text/x-python",
	".js":   "text/javascript",
	".jsx":  "text/javascript",
	".ts":   "text/typescript",
	".tsx":  "text/typescript",
	".go":   "text/x-go",
	".java": "text/x-java",
	".rb":   "text/x-ruby",
	".rs":   "text/x-rust",
	".php":  "text/x-php",
	".html": "text/html",
	".css":  "text/css",
	".scss": "text/css",
	".json": "application/json",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".toml": "application/toml",
	".md":   "text/markdown",
	".txt":  "text/plain",
	".rst":  "text/plain",
	".sql":  "application/sql",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
}

// Process converts one uploaded file into a FileRecord. Office documents
// get their text extracted and embedded images pulled out; standalone
// images become image references; unknown binaries keep empty content.
func Process(name string, data []byte) (models.FileRecord, error) {
	ext := strings.ToLower(filepath.Ext(name))
	record := models.FileRecord{
		Name: name,
		Size: int64(len(data)),
		Type: contentType(name),
	}

	switch {
	case ext == ".docx":
		text, images, err := extractDocx(name, data)
		if err != nil {
			return record, fmt.Errorf("extract %s: %w", name, err)
		}
		record.Content = clip(text)
		record.EmbeddedImages = images
	case ext == ".pptx":
		text, images, err := extractPptx(name, data)
		if err != nil {
			return record, fmt.Errorf("extract %s: %w", name, err)
		}
		record.Content = clip(text)
		record.EmbeddedImages = images
	case imageExtensions[ext]:
		record.EmbeddedImages = []models.ImageRef{imageRef(name, name, data, "upload")}
	case isText(data):
		record.Content = clip(string(data))
	}
	return record, nil
}

// contentType maps a file name to a MIME type, defaulting to octet-stream.
func contentType(name string) string {
	if mime, ok := mimeByExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// isText accepts content that is valid UTF-8 with no NUL bytes.
func isText(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	return utf8.Valid(data)
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxExtractedChars {
		return s[:maxExtractedChars]
	}
	return s
}

var xmlTagRE = regexp.MustCompile(`<[^>]+>`)

// stripXMLTags flattens OOXML markup to plain text. Paragraph and row
// closers become newlines so document structure survives roughly.
func stripXMLTags(xml string) string {
	replacer := strings.NewReplacer("</w:p>", "\n", "</a:p>", "\n", "</w:tr>", "\n")
	text := replacer.Replace(xml)
	text = xmlTagRE.ReplaceAllString(text, " ")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if t := strings.Join(strings.Fields(line), " "); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// extractDocx pulls paragraph text from word/document.xml and embedded
// images from word/media inside a Word document archive.
func extractDocx(name string, data []byte) (string, []models.ImageRef, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("open docx archive: %w", err)
	}

	var (
		text   string
		images []models.ImageRef
	)
	for _, f := range reader.File {
		switch {
		case f.Name == "word/document.xml":
			raw, err := readZipFile(f)
			if err != nil {
				return "", nil, err
			}
			text = stripXMLTags(string(raw))
		case strings.HasPrefix(f.Name, "word/media/") && imageExtensions[strings.ToLower(filepath.Ext(f.Name))]:
			raw, err := readZipFile(f)
			if err != nil {
				return "", nil, err
			}
			images = append(images, imageRef(filepath.Base(f.Name), "", raw, "docx"))
		}
	}
	// Archive entry order is not guaranteed, so contexts are filled in once
	// the document text is known.
	for i := range images {
		images[i].Context = strings.ToLower(name + " " + text)
		images[i].Placement = placementFor(images[i].Context, images[i].Name)
	}
	sortImages(images)
	return text, images, nil
}

// extractPptx pulls text from every slide and images from ppt/media inside
// a PowerPoint archive. Slides are processed in name order.
func extractPptx(name string, data []byte) (string, []models.ImageRef, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("open pptx archive: %w", err)
	}

	var (
		slides []string
		images []models.ImageRef
	)
	var slideFiles []*zip.File
	for _, f := range reader.File {
		switch {
		case strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml"):
			slideFiles = append(slideFiles, f)
		case strings.HasPrefix(f.Name, "ppt/media/") && imageExtensions[strings.ToLower(filepath.Ext(f.Name))]:
			raw, err := readZipFile(f)
			if err != nil {
				return "", nil, err
			}
			images = append(images, imageRef(filepath.Base(f.Name), "", raw, "pptx"))
		}
	}
	sort.Slice(slideFiles, func(i, j int) bool { return slideFiles[i].Name < slideFiles[j].Name })
	for _, f := range slideFiles {
		raw, err := readZipFile(f)
		if err != nil {
			return "", nil, err
		}
		slides = append(slides, stripXMLTags(string(raw)))
	}

	text := strings.Join(slides, "\n\n")
	for i := range images {
		images[i].Context = strings.ToLower(name + " " + text)
		images[i].Placement = placementFor(images[i].Context, images[i].Name)
	}
	sortImages(images)
	return text, images, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func sortImages(images []models.ImageRef) {
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
}

func imageRef(name, context string, data []byte, source string) models.ImageRef {
	ctx := strings.ToLower(context)
	return models.ImageRef{
		Name:      name,
		Data:      base64.StdEncoding.EncodeToString(data),
		Context:   ctx,
		Placement: placementFor(ctx, name),
		Source:    source,
	}
}

// placementSections maps context keywords to the documentation section an
// image most likely belongs to. First match wins, top to bottom.
var placementSections = []struct {
	Section  string
	Keywords []string
}{
	{"architecture", []string{"architecture", "diagram", "design", "topology", "system"}},
	{"deployment", []string{"deploy", "infrastructure", "docker", "kubernetes", "pipeline"}},
	{"user interface", []string{"ui", "screen", "screenshot", "interface", "mockup", "wireframe"}},
	{"api", []string{"api", "endpoint", "sequence", "request", "flow"}},
}

// placementFor guesses where an image belongs from its surrounding context
// and file name.
func placementFor(context, name string) models.ImagePlacement {
	haystack := strings.ToLower(context + " " + name)
	for _, ps := range placementSections {
		for _, kw := range ps.Keywords {
			if strings.Contains(haystack, kw) {
				return models.ImagePlacement{
					Section:     ps.Section,
					Description: fmt.Sprintf("%s (%s)", name, ps.Section),
				}
			}
		}
	}
	return models.ImagePlacement{Section: "overview", Description: name}
}
