package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

type scriptedResponse struct {
	content string
	tokens  int
	err     error
}

// scriptedClient replays canned responses and records every call.
type scriptedClient struct {
	mu        sync.Mutex
	calls     [][]ChatMessage
	responses []scriptedResponse
}

func (c *scriptedClient) Complete(_ context.Context, _ string, messages []ChatMessage) (string, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := len(c.calls)
	c.calls = append(c.calls, append([]ChatMessage{}, messages...))
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	r := c.responses[idx]
	return r.content, r.tokens, r.err
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// makeDraft builds markdown whose total word count is exactly the given
// number, with enough headings and lists to satisfy the quality gate.
func makeDraft(words int) string {
	base := "## Section One\n\ntext\n\n## Section Two\n\ntext\n\n## Section Three\n\n- item one\n- item two\n\n```go\ncode()\n```\n\n"
	var b strings.Builder
	b.WriteString(base)
	for i := len(strings.Fields(base)); i < words; i++ {
		fmt.Fprintf(&b, "w%d ", i)
	}
	return b.String()
}

func testSnapshot() models.ProjectSnapshot {
	return models.ProjectSnapshot{
		Title:       "Billing Service",
		Description: "Invoicing backend",
		Files: []models.FileRecord{
			{Name: "main.py", Size: 1200, Content: "import flask"},
			{Name: "README.md", Size: 400, Content: "# Billing"},
		},
	}
}

func TestMakeDraftWordCount(t *testing.T) {
	require.Equal(t, 700, countWords(makeDraft(700)))
	require.Equal(t, 699, countWords(makeDraft(699)))
}

func TestPassesQualityWordBoundary(t *testing.T) {
	agent := NewAgent(DefaultRoster()[0], nil, DefaultModel, DefaultQualityConfig())

	assert.False(t, agent.passesQuality(makeDraft(699)))
	assert.True(t, agent.passesQuality(makeDraft(700)))
}

func TestPassesQualityStructureChecks(t *testing.T) {
	agent := NewAgent(DefaultRoster()[0], nil, DefaultModel, DefaultQualityConfig())

	noHeadings := strings.Repeat("word ", 800) + "\n- a list item\n"
	assert.False(t, agent.passesQuality(noHeadings))

	noList := "## One\n## Two\n## Three\n" + strings.Repeat("word ", 800)
	assert.False(t, agent.passesQuality(noList))
}

func TestAgentAcceptsGoodDraftFirstAttempt(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{content: makeDraft(900), tokens: 1500},
	}}
	agent := NewAgent(DefaultRoster()[0], client, DefaultModel, DefaultQualityConfig())

	result, err := agent.Run(context.Background(), testSnapshot(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1500, result.Tokens)
	assert.False(t, result.Simulated)
}

func TestAgentRetriesWithCorrectiveCritique(t *testing.T) {
	shortDraft := makeDraft(200)
	client := &scriptedClient{responses: []scriptedResponse{
		{content: shortDraft, tokens: 400},
		{content: makeDraft(900), tokens: 1400},
	}}
	agent := NewAgent(DefaultRoster()[0], client, DefaultModel, DefaultQualityConfig())

	result, err := agent.Run(context.Background(), testSnapshot(), nil)

	require.NoError(t, err)
	require.Equal(t, 2, client.callCount())
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 1800, result.Tokens)

	// Second call replays the base conversation plus the rejected draft and
	// a corrective follow-up.
	second := client.calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, RoleSystem, second[0].Role)
	assert.Equal(t, RoleUser, second[1].Role)
	assert.Equal(t, RoleAssistant, second[2].Role)
	assert.Equal(t, shortDraft, second[2].Content)
	assert.Equal(t, RoleUser, second[3].Role)
	assert.Contains(t, second[3].Content, "Too short (must be 800-1500 words)")
}

func TestAgentStopsAtAttemptBudgetAndKeepsLongestDraft(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{content: makeDraft(300), tokens: 100},
		{content: makeDraft(500), tokens: 100},
		{content: makeDraft(400), tokens: 100},
	}}
	agent := NewAgent(DefaultRoster()[0], client, DefaultModel, DefaultQualityConfig())

	result, err := agent.Run(context.Background(), testSnapshot(), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, client.callCount())
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 300, result.Tokens)
	assert.Contains(t, result.Content, "w499")
	assert.NotContains(t, result.Content, "w500")
}

func TestAgentFallsBackWhenBackendReturnsNothing(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{{content: ""}}}
	agent := NewAgent(DefaultRoster()[0], client, DefaultModel, DefaultQualityConfig())

	result, err := agent.Run(context.Background(), testSnapshot(), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, client.callCount())
	assert.NotEmpty(t, strings.TrimSpace(result.Content))
	assert.Contains(t, result.Content, "Billing Service")
}

func TestAgentSimulatesWhenFirstCallFails(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{err: errors.New("upstream unavailable")},
	}}
	agent := NewAgent(DefaultRoster()[0], client, DefaultModel, DefaultQualityConfig())

	result, err := agent.Run(context.Background(), testSnapshot(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, 1, result.Attempts)
	assert.True(t, result.Simulated)
	assert.Contains(t, result.Content, "Code Architecture Analysis")
}

func TestAgentThreadsSharedContextIntoPrompt(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{content: makeDraft(900), tokens: 100},
	}}
	agent := NewAgent(DefaultRoster()[0], client, DefaultModel, DefaultQualityConfig())

	shared := map[string]string{
		AgentSecurity: "Authentication uses short-lived bearer tokens.",
	}
	_, err := agent.Run(context.Background(), testSnapshot(), shared)

	require.NoError(t, err)
	require.Equal(t, 1, client.callCount())
	prompt := client.calls[0][1].Content
	assert.Contains(t, prompt, "## Insights From Other Agents")
	assert.Contains(t, prompt, "short-lived bearer tokens")
}

func TestAgentKeepsDraftWhenRetryFails(t *testing.T) {
	draft := makeDraft(200)
	client := &scriptedClient{responses: []scriptedResponse{
		{content: draft, tokens: 300},
		{err: errors.New("timeout")},
	}}
	agent := NewAgent(DefaultRoster()[0], client, DefaultModel, DefaultQualityConfig())

	result, err := agent.Run(context.Background(), testSnapshot(), nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.Contains(t, result.Content, "w100")
}

func TestAgentSimulationMode(t *testing.T) {
	agent := NewAgent(DefaultRoster()[3], nil, DefaultModel, DefaultQualityConfig())

	result, err := agent.Run(context.Background(), testSnapshot(), nil)

	require.NoError(t, err)
	assert.True(t, result.Simulated)
	assert.Equal(t, 0, result.Attempts)
	assert.Contains(t, result.Content, "Billing Service")
	assert.Contains(t, result.Content, "Security Implementation Analysis")
	assert.Equal(t, len(result.Content)/4, result.Tokens)
}

func TestAgentSimulationWithNoFiles(t *testing.T) {
	agent := NewAgent(DefaultRoster()[0], nil, DefaultModel, DefaultQualityConfig())
	snapshot := models.ProjectSnapshot{Title: "Empty Project"}

	result, err := agent.Run(context.Background(), snapshot, nil)

	require.NoError(t, err)
	assert.Contains(t, result.Content, "No project files uploaded yet")

	as := NewAssembler(DefaultAssembleConfig())
	assert.True(t, as.validSection(cleanContent(result.Content)))
}

func TestAddImagesMatchesKeywordsAndCapsCount(t *testing.T) {
	agent := NewAgent(DefaultRoster()[0], nil, DefaultModel, DefaultQualityConfig())

	images := []models.ImageRef{
		{Name: "module-map.png", Data: "AAAA", Context: "module diagram"},
		{Name: "class-tree.png", Data: "BBBB", Context: "class hierarchy"},
		{Name: "funcs.png", Data: "CCCC", Context: "function overview"},
		{Name: "unrelated.png", Data: "DDDD", Context: "vacation photo"},
	}

	content := "## Code Layout\n\nBody text here.\n"
	out := agent.addImages(content, images)

	assert.Contains(t, out, "## Visual Documentation")
	assert.Contains(t, out, "data:image/png;base64,AAAA")
	assert.Contains(t, out, "data:image/png;base64,BBBB")
	assert.NotContains(t, out, "CCCC")
	assert.NotContains(t, out, "DDDD")

	// Images land after the first subsection heading, not before it.
	assert.Less(t, strings.Index(out, "## Code Layout"), strings.Index(out, "## Visual Documentation"))
}

func TestAddImagesNoMatch(t *testing.T) {
	agent := NewAgent(DefaultRoster()[0], nil, DefaultModel, DefaultQualityConfig())
	content := "## Code Layout\n\nBody.\n"
	out := agent.addImages(content, []models.ImageRef{
		{Name: "beach.png", Data: "EEEE", Context: "holiday snapshot"},
	})
	assert.Equal(t, content, out)
}

func TestFileCategory(t *testing.T) {
	tests := []struct {
		file     string
		expected string
	}{
		{"app.py", categorySourceCode},
		{"index.tsx", categorySourceCode},
		{"styles.scss", categoryFrontend},
		{"settings.yaml", categoryConfiguration},
		{"Dockerfile", categoryConfiguration},
		{"nginx.config", categoryConfiguration},
		{"README.md", categoryDocumentation},
		{"schema.sql", categoryDatabase},
		{"test_app.py", categoryTests},
		{"handler.spec", categoryTests},
		{"logo.png", categoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.expected, fileCategory(tt.file))
		})
	}
}

func TestDetectProjectType(t *testing.T) {
	files := func(names ...string) []models.FileRecord {
		out := make([]models.FileRecord, len(names))
		for i, n := range names {
			out[i] = models.FileRecord{Name: n}
		}
		return out
	}

	assert.Equal(t, "React Web Application", detectProjectType(files("App.jsx", "index.html")))
	assert.Equal(t, "Python Application", detectProjectType(files("main.py", "util.py")))
	assert.Equal(t, "Java Application", detectProjectType(files("Main.java")))
	assert.Equal(t, "Node.js Application", detectProjectType(files("server.js")))
	assert.Equal(t, "Multi-language Project", detectProjectType(files("main.py", "server.js")))
	assert.Equal(t, "Software Project", detectProjectType(nil))
}

func TestAssessComplexity(t *testing.T) {
	assert.Equal(t, "Minimal", assessComplexity(3))
	assert.Equal(t, "Low", assessComplexity(6))
	assert.Equal(t, "Medium", assessComplexity(21))
	assert.Equal(t, "High", assessComplexity(51))
}

func TestBuildProjectContextGroupsAndTruncates(t *testing.T) {
	snapshot := models.ProjectSnapshot{
		Title:       "Big Project",
		Description: "Lots of files",
	}
	for i := 0; i < 12; i++ {
		snapshot.Files = append(snapshot.Files, models.FileRecord{
			Name:    fmt.Sprintf("mod%02d.go", i),
			Size:    100,
			Content: strings.Repeat("x", 500),
		})
	}

	ctx := buildProjectContext(snapshot)

	assert.Contains(t, ctx, "# Project: Big Project")
	assert.Contains(t, ctx, "## Source Code (12 files)")
	assert.Contains(t, ctx, "...and 2 more Source Code files")
	// Previews are cut to 200 characters plus an ellipsis.
	assert.Contains(t, ctx, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, ctx, strings.Repeat("x", 201))
}
