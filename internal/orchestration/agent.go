package orchestration

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

var tracer = otel.Tracer("doc-orchestrator/orchestration")

// Agent runs one specialist analysis over a project snapshot. Each agent is
// independent: it builds its own prompt, drives its own retry loop, and
// returns a finished markdown section.
type Agent struct {
	spec    AgentSpec
	client  ChatClient
	model   string
	quality QualityConfig
}

// NewAgent builds an agent for the given spec. A nil client puts the agent
// in simulation mode.
func NewAgent(spec AgentSpec, client ChatClient, model string, quality QualityConfig) *Agent {
	return &Agent{spec: spec, client: client, model: model, quality: quality}
}

// Name returns the agent's canonical name.
func (a *Agent) Name() string { return a.spec.Name }

// AgentResult is the output of one agent run.
type AgentResult struct {
	Agent     string
	Content   string
	Tokens    int
	Attempts  int
	Simulated bool
	Duration  time.Duration
}

// Run produces the agent's markdown section for the snapshot. When a backend
// is configured it drives a bounded draft/critique/retry loop and keeps the
// longest draft as a fallback when no draft passes the quality gate. Without
// a backend it returns simulated content. shared carries insights from other
// agents to include in the prompt; nil means none are available yet.
//
// Run never fails: backend errors degrade to simulated content so one
// unavailable upstream cannot remove a section from the document.
func (a *Agent) Run(ctx context.Context, snapshot models.ProjectSnapshot, shared map[string]string) (AgentResult, error) {
	ctx, span := tracer.Start(ctx, "agent.run", trace.WithAttributes(
		attribute.String("agent.name", a.spec.Name),
		attribute.Int("project.files", len(snapshot.Files)),
	))
	defer span.End()

	start := time.Now()
	if a.client == nil {
		content := a.simulateContent(snapshot)
		return AgentResult{
			Agent:     a.spec.Name,
			Content:   content,
			Tokens:    estimateTokens(content),
			Attempts:  0,
			Simulated: true,
			Duration:  time.Since(start),
		}, nil
	}

	userPrompt := a.buildUserPrompt(snapshot, shared)
	base := []ChatMessage{
		{Role: RoleSystem, Content: a.spec.SystemPrompt},
		{Role: RoleUser, Content: userPrompt},
	}

	var (
		best     string
		tokens   int
		attempts int
		lastErr  error
	)
	messages := base
	for attempts < a.quality.MaxAttempts {
		attempts++
		draft, used, err := a.client.Complete(ctx, a.model, messages)
		tokens += used
		if err != nil {
			lastErr = fmt.Errorf("agent %s attempt %d: %w", a.spec.Name, attempts, err)
			log.Printf(`{"level":"warn","component":"orchestration","agent":%q,"attempt":%d,"error":%q}`,
				a.spec.Name, attempts, err.Error())
			break
		}
		if len(draft) > len(best) {
			best = draft
		}
		if a.passesQuality(draft) {
			best = draft
			break
		}
		issues := a.critique(draft)
		messages = append(append([]ChatMessage{}, base...),
			ChatMessage{Role: RoleAssistant, Content: draft},
			ChatMessage{Role: RoleUser, Content: a.repairPrompt(issues)},
		)
	}

	if strings.TrimSpace(best) == "" {
		if lastErr != nil {
			span.SetAttributes(attribute.Bool("agent.degraded", true))
			content := a.simulateContent(snapshot)
			return AgentResult{
				Agent:     a.spec.Name,
				Content:   content,
				Tokens:    tokens,
				Attempts:  attempts,
				Simulated: true,
				Duration:  time.Since(start),
			}, nil
		}
		best = a.contextFallback(snapshot)
	}

	best = a.addImages(best, collectImages(snapshot.Files))

	span.SetAttributes(
		attribute.Int("agent.attempts", attempts),
		attribute.Int("agent.tokens", tokens),
	)
	return AgentResult{
		Agent:    a.spec.Name,
		Content:  best,
		Tokens:   tokens,
		Attempts: attempts,
		Duration: time.Since(start),
	}, nil
}

// passesQuality applies the acceptance gate to a draft.
func (a *Agent) passesQuality(content string) bool {
	if countWords(content) < a.quality.MinWords {
		return false
	}
	if countHeadings(content) < a.quality.MinHeadings {
		return false
	}
	return hasList(content)
}

// critique lists the concrete defects of a rejected draft. The issues feed
// the corrective follow-up message verbatim.
func (a *Agent) critique(content string) []string {
	var issues []string
	if countWords(content) < a.quality.TargetWords {
		issues = append(issues, fmt.Sprintf("Too short (must be %d-1500 words)", a.quality.TargetWords))
	}
	if countHeadings(content) < 5 {
		issues = append(issues, "Needs at least 5 markdown headings")
	}
	if !strings.Contains(content, "```") {
		issues = append(issues, "Missing code block examples")
	}
	if !strings.Contains(content, "- ") && !strings.Contains(content, "* ") {
		issues = append(issues, "Missing bullet point lists")
	}
	if len(issues) == 0 {
		issues = append(issues, "Expand the analysis with more project-specific detail")
	}
	return issues
}

func (a *Agent) repairPrompt(issues []string) string {
	var b strings.Builder
	b.WriteString("Your previous response had these issues:\n")
	for _, issue := range issues {
		b.WriteString("- ")
		b.WriteString(issue)
		b.WriteString("\n")
	}
	b.WriteString("\nRewrite the complete section fixing all issues. ")
	b.WriteString("Keep everything grounded in the project files provided earlier.")
	return b.String()
}

// buildUserPrompt assembles the full analysis request from the project
// context, insights shared by other agents, and the agent's focus.
func (a *Agent) buildUserPrompt(snapshot models.ProjectSnapshot, shared map[string]string) string {
	var b strings.Builder
	b.WriteString(buildProjectContext(snapshot))
	if len(shared) > 0 {
		b.WriteString("\n\n## Insights From Other Agents\n")
		names := make([]string, 0, len(shared))
		for name := range shared {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "\n- %s: %s\n", name, shared[name])
		}
	}
	b.WriteString("\n\nAnalyze this project focusing on ")
	b.WriteString(a.spec.Focus)
	b.WriteString(". Produce a complete markdown documentation section.")
	return b.String()
}

// contextFallback builds a minimal deterministic section from the snapshot
// alone, used when every backend draft came back empty.
func (a *Agent) contextFallback(snapshot models.ProjectSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", strings.Replace(a.spec.Name, " Agent", " Analysis", 1))
	fmt.Fprintf(&b, "This section covers %s for **%s**.\n\n", a.spec.Focus, snapshot.Title)
	if snapshot.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", snapshot.Description)
	}
	fmt.Fprintf(&b, "### Project Files\n\n")
	for i, f := range snapshot.Files {
		if i >= 10 {
			fmt.Fprintf(&b, "- and %d more files\n", len(snapshot.Files)-i)
			break
		}
		fmt.Fprintf(&b, "- `%s` (%d bytes)\n", f.Name, f.Size)
	}
	return b.String()
}

// addImages embeds up to MaxImages extracted images whose context or name
// matches the agent's keywords, under a Visual Documentation heading placed
// after the section's first subsection heading.
func (a *Agent) addImages(content string, images []models.ImageRef) string {
	if len(images) == 0 || a.quality.MaxImages <= 0 {
		return content
	}
	var matched []models.ImageRef
	for _, img := range images {
		haystack := strings.ToLower(img.Context + " " + img.Name)
		for _, kw := range a.spec.Keywords {
			if strings.Contains(haystack, kw) {
				matched = append(matched, img)
				break
			}
		}
		if len(matched) >= a.quality.MaxImages {
			break
		}
	}
	if len(matched) == 0 {
		return content
	}

	var block strings.Builder
	block.WriteString("\n\n## Visual Documentation\n\n")
	for _, img := range matched {
		desc := img.Placement.Description
		if desc == "" {
			desc = img.Name
		}
		fmt.Fprintf(&block, "![%s](data:image/png;base64,%s)\n\n", desc, img.Data)
	}

	// Insert after the first level-2 heading line so the images sit inside
	// the section rather than above its title.
	idx := strings.Index(content, "## ")
	if idx >= 0 {
		if end := strings.Index(content[idx:], "\n"); end >= 0 {
			pos := idx + end
			return content[:pos] + block.String() + content[pos+1:]
		}
	}
	return content + block.String()
}

func collectImages(files []models.FileRecord) []models.ImageRef {
	var images []models.ImageRef
	for _, f := range files {
		images = append(images, f.EmbeddedImages...)
	}
	return images
}

// File categories used to group project files in prompts.
const (
	categorySourceCode    = "Source Code"
	categoryFrontend      = "Frontend Assets"
	categoryConfiguration = "Configuration"
	categoryDocumentation = "Documentation"
	categoryDatabase      = "Database"
	categoryTests         = "Tests"
	categoryOther         = "Other"
)

var categoryOrder = []string{
	categorySourceCode,
	categoryFrontend,
	categoryConfiguration,
	categoryDocumentation,
	categoryDatabase,
	categoryTests,
	categoryOther,
}

var sourceExtensions = map[string]bool{
	"py": true, "js": true, "jsx": true, "ts": true, "tsx": true,
	"java": true, "cpp": true, "c": true, "cs": true, "php": true,
	"rb": true, "go": true, "rs": true, "swift": true, "kt": true, "scala": true,
}

var frontendExtensions = map[string]bool{
	"html": true, "css": true, "scss": true, "sass": true, "less": true,
}

var configExtensions = map[string]bool{
	"json": true, "yaml": true, "yml": true, "toml": true,
	"ini": true, "cfg": true, "conf": true,
}

var docExtensions = map[string]bool{
	"md": true, "txt": true, "rst": true,
}

var dbExtensions = map[string]bool{
	"sql": true, "db": true, "sqlite": true,
}

// fileCategory classifies a file by name and extension.
func fileCategory(name string) string {
	lower := strings.ToLower(name)
	ext := strings.TrimPrefix(filepath.Ext(lower), ".")
	switch {
	case strings.Contains(lower, "test") || ext == "spec":
		return categoryTests
	case sourceExtensions[ext]:
		return categorySourceCode
	case frontendExtensions[ext]:
		return categoryFrontend
	case configExtensions[ext] || strings.Contains(lower, "config") || ext == "":
		return categoryConfiguration
	case docExtensions[ext]:
		return categoryDocumentation
	case dbExtensions[ext]:
		return categoryDatabase
	default:
		return categoryOther
	}
}

const (
	maxFilesPerCategory = 10
	previewChars        = 200
)

// buildProjectContext renders the snapshot into the shared prompt preamble:
// project identity, derived type and complexity, then files grouped by
// category with short content previews.
func buildProjectContext(snapshot models.ProjectSnapshot) string {
	grouped := make(map[string][]models.FileRecord)
	for _, f := range snapshot.Files {
		cat := fileCategory(f.Name)
		grouped[cat] = append(grouped[cat], f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Project: %s\n\n", snapshot.Title)
	if snapshot.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", snapshot.Description)
	}
	fmt.Fprintf(&b, "Project Type: %s\n", detectProjectType(snapshot.Files))
	fmt.Fprintf(&b, "Complexity: %s\n", assessComplexity(len(snapshot.Files)))
	fmt.Fprintf(&b, "Total Files: %d\n", len(snapshot.Files))

	for _, cat := range categoryOrder {
		files := grouped[cat]
		if len(files) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s (%d files)\n", cat, len(files))
		shown := files
		if len(shown) > maxFilesPerCategory {
			shown = shown[:maxFilesPerCategory]
		}
		for _, f := range shown {
			fmt.Fprintf(&b, "\n### %s (%d bytes)\n", f.Name, f.Size)
			preview := strings.TrimSpace(f.Content)
			if preview != "" {
				if len(preview) > previewChars {
					preview = preview[:previewChars] + "..."
				}
				fmt.Fprintf(&b, "```\n%s\n```\n", preview)
			}
		}
		if len(files) > maxFilesPerCategory {
			fmt.Fprintf(&b, "\n...and %d more %s files\n", len(files)-maxFilesPerCategory, cat)
		}
	}
	return b.String()
}

// detectProjectType infers the primary stack from file extensions.
func detectProjectType(files []models.FileRecord) string {
	exts := make(map[string]bool)
	for _, f := range files {
		exts[strings.TrimPrefix(filepath.Ext(strings.ToLower(f.Name)), ".")] = true
	}
	hasReact := exts["jsx"] || exts["tsx"]
	languages := 0
	for _, present := range []bool{
		exts["py"],
		exts["java"],
		exts["js"] || exts["ts"] || hasReact,
		exts["go"],
		exts["rb"] || exts["php"] || exts["rs"] || exts["cs"],
	} {
		if present {
			languages++
		}
	}
	switch {
	case languages > 1:
		return "Multi-language Project"
	case hasReact:
		return "React Web Application"
	case exts["py"]:
		return "Python Application"
	case exts["java"]:
		return "Java Application"
	case exts["js"] || exts["ts"]:
		return "Node.js Application"
	default:
		return "Software Project"
	}
}

// assessComplexity grades project size from its file count.
func assessComplexity(fileCount int) string {
	switch {
	case fileCount > 50:
		return "High"
	case fileCount > 20:
		return "Medium"
	case fileCount > 5:
		return "Low"
	default:
		return "Minimal"
	}
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// countHeadings counts markdown heading lines.
func countHeadings(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			n++
		}
	}
	return n
}

// hasList reports whether the content contains a bullet or numbered list line.
func hasList(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") {
			return true
		}
		if len(t) > 2 && t[0] >= '0' && t[0] <= '9' && strings.Contains(t[:3], ".") {
			return true
		}
	}
	return false
}

// estimateTokens approximates token usage for content that did not pass
// through a backend.
func estimateTokens(s string) int {
	return len(s) / 4
}
