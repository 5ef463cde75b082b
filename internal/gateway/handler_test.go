package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

func TestRenderDocument(t *testing.T) {
	tabs := []models.SectionRecord{
		{Title: "Documentation Overview", Content: "# Documentation Overview\n\nContents here.", SectionNumber: 0},
		{Title: "Code Architecture Analysis", Content: "## Layout\n\nDetails.", SectionNumber: 1},
		{Title: "Security Implementation Analysis", Content: "## Tokens\n\nMore details.", SectionNumber: 2},
	}

	doc := renderDocument(tabs)

	// The overview tab keeps its own heading; numbered tabs get composed ones.
	assert.Contains(t, doc, "# Documentation Overview\n\nContents here.\n\n---\n")
	assert.Contains(t, doc, "# 1. Code Architecture Analysis\n## Layout\n\nDetails.\n\n---\n")
	assert.Contains(t, doc, "# 2. Security Implementation Analysis\n## Tokens\n\nMore details.\n\n---\n")
}

func TestRenderDocumentNoOverview(t *testing.T) {
	tabs := []models.SectionRecord{
		{Title: "Project Documentation", Content: "## Body\n\nText.", SectionNumber: 1},
	}

	doc := renderDocument(tabs)
	assert.Equal(t, "# 1. Project Documentation\n## Body\n\nText.\n\n---\n", doc)
}

func TestRenderDocumentEmpty(t *testing.T) {
	assert.Empty(t, renderDocument(nil))
}
