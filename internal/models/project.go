package models

import (
	"time"
)

// Project statuses
const (
	ProjectStatusProcessing = "processing"
	ProjectStatusCompleted  = "completed"
	ProjectStatusError      = "error"
)

// Project represents a documentation project persisted in the store
type Project struct {
	ID                 string       `json:"id" db:"id"`
	Title              string       `json:"title" db:"title"`
	Description        string       `json:"description" db:"description"`
	Status             string       `json:"status" db:"status"`
	Progress           int          `json:"progress" db:"progress"`
	StatusMessage      *string      `json:"status_message,omitempty" db:"status_message"`
	Files              []FileRecord `json:"files,omitempty" db:"files_json"`
	Documentation      *string      `json:"documentation,omitempty" db:"documentation"`
	GenerationMetadata *string      `json:"generation_metadata,omitempty" db:"generation_metadata"`
	DiagramsJSON       *string      `json:"diagrams,omitempty" db:"diagrams_json"`
	CreatedBy          *string      `json:"created_by,omitempty" db:"created_by"`
	IsPublic           bool         `json:"is_public" db:"is_public"`
	Version            string       `json:"version" db:"version"`
	ErrorMessage       *string      `json:"error,omitempty" db:"error_message"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// Snapshot extracts the immutable generation input from a project.
func (p *Project) Snapshot() ProjectSnapshot {
	return ProjectSnapshot{
		Title:       p.Title,
		Description: p.Description,
		Files:       p.Files,
	}
}

// ProjectSnapshot is the immutable input to one generation run. It is built
// before the orchestrator starts and never mutated by agents.
type ProjectSnapshot struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Files       []FileRecord `json:"files"`
}

// FileRecord is one processed input file as produced by the file processor.
// Content holds extracted text and may be empty (e.g. for binary uploads).
type FileRecord struct {
	Name           string     `json:"name"`
	Size           int64      `json:"size"`
	Content        string     `json:"content"`
	Type           string     `json:"type"`
	EmbeddedImages []ImageRef `json:"embedded_images,omitempty"`
}

// ImagePlacement is a hint for where an extracted image belongs in the
// generated documentation.
type ImagePlacement struct {
	Section     string `json:"section"`
	Description string `json:"description"`
}

// ImageRef is an image extracted from a document. Data is a base64 payload;
// it is never embedded into a model prompt, only into final markdown.
type ImageRef struct {
	Name      string         `json:"name"`
	Data      string         `json:"data"`
	Context   string         `json:"context"`
	Placement ImagePlacement `json:"placement"`
	Source    string         `json:"source"`
}

// SectionRecord is one titled, numbered unit of final documentation (a "tab").
// SectionNumber is dense and 1-based, assigned at assembly time; the overview
// tab carries number 0.
type SectionRecord struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	WordCount     int    `json:"word_count"`
	Agent         string `json:"agent"`
	SectionNumber int    `json:"section_number"`
}

// Generation method tags
const (
	MethodMultiAgentParallel   = "multi-agent-parallel"
	MethodMultiAgentSimulation = "multi-agent-simulation"
)

// GenerationMetadata is the persisted summary of one generation run, stored
// on the project next to the document itself.
type GenerationMetadata struct {
	Model             string          `json:"model"`
	Method            string          `json:"method"`
	TokensUsed        int             `json:"tokens_used"`
	ProcessingTimeMS  int64           `json:"processing_time_ms"`
	GeneratedAt       time.Time       `json:"generated_at"`
	AgentsDeployed    int             `json:"agents_deployed"`
	SectionsGenerated int             `json:"sections_generated"`
	Tabs              []SectionRecord `json:"tabs"`
}

// GenerationResult is the top-level output of one orchestrator run.
type GenerationResult struct {
	Content           string          `json:"content"`
	Tabs              []SectionRecord `json:"tabs"`
	Model             string          `json:"model"`
	TokensUsed        int             `json:"tokens_used"`
	ProcessingTimeMS  int64           `json:"processing_time_ms"`
	GeneratedAt       time.Time       `json:"generated_at"`
	Method            string          `json:"method"`
	AgentsDeployed    int             `json:"agents_deployed"`
	SectionsGenerated int             `json:"sections_generated"`
}
