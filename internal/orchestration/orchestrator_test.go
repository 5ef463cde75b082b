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

// distinctDraftClient hands every agent a quality-passing draft with its own
// vocabulary, so assembly keeps all sections. Agents are told apart by their
// system prompt. Prompts listed in failFor get an error instead.
type distinctDraftClient struct {
	mu       sync.Mutex
	prefixes map[string]string
	failFor  map[string]bool
	calls    int
}

func newDistinctDraftClient(failFor ...string) *distinctDraftClient {
	c := &distinctDraftClient{
		prefixes: make(map[string]string),
		failFor:  make(map[string]bool),
	}
	for _, prompt := range failFor {
		c.failFor[prompt] = true
	}
	return c
}

func (c *distinctDraftClient) Complete(_ context.Context, _ string, messages []ChatMessage) (string, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	system := messages[0].Content
	if c.failFor[system] {
		return "", 0, errors.New("upstream unavailable")
	}
	prefix, ok := c.prefixes[system]
	if !ok {
		prefix = fmt.Sprintf("agent%dterm", len(c.prefixes))
		c.prefixes[system] = prefix
	}
	return makePrefixedDraft(prefix, 900), 100, nil
}

// makePrefixedDraft is makeDraft with a caller-chosen filler vocabulary.
func makePrefixedDraft(prefix string, words int) string {
	base := "## Section One\n\ntext\n\n## Section Two\n\ntext\n\n## Section Three\n\n- item one\n- item two\n\n```go\ncode()\n```\n\n"
	var b strings.Builder
	b.WriteString(base)
	for i := len(strings.Fields(base)); i < words; i++ {
		fmt.Fprintf(&b, "%s%d ", prefix, i)
	}
	return b.String()
}

func TestGenerateSimulationRun(t *testing.T) {
	o := NewOrchestrator(DefaultRoster(), nil, "", DefaultQualityConfig(), DefaultAssembleConfig())

	result, err := o.Generate(context.Background(), testSnapshot())

	require.NoError(t, err)
	assert.Equal(t, models.MethodMultiAgentSimulation, result.Method)
	assert.Equal(t, models.MethodMultiAgentSimulation, result.Model)
	assert.Equal(t, 8, result.AgentsDeployed)
	assert.Equal(t, 8, result.SectionsGenerated)
	require.Len(t, result.Tabs, 9)
	assert.Equal(t, 0, result.Tabs[0].SectionNumber)
	assert.Equal(t, AgentOrchestrator, result.Tabs[0].Agent)
	assert.Equal(t, simulatedDurationMS(2), result.ProcessingTimeMS)
	assert.False(t, result.GeneratedAt.IsZero())
	assert.Contains(t, result.Content, "Billing Service")
}

func TestGenerateSimulationKeepsCanonicalOrder(t *testing.T) {
	o := NewOrchestrator(DefaultRoster(), nil, "", DefaultQualityConfig(), DefaultAssembleConfig())

	result, err := o.Generate(context.Background(), testSnapshot())

	require.NoError(t, err)
	require.Len(t, result.Tabs, 9)
	expected := []string{
		AgentCodeArchitecture,
		AgentSystemArchitecture,
		AgentAPIIntegration,
		AgentSecurity,
		AgentDeployment,
		AgentQualityAssurance,
		AgentUserDocumentation,
		AgentPerformance,
	}
	for i, agent := range expected {
		assert.Equal(t, agent, result.Tabs[i+1].Agent)
		assert.Equal(t, i+1, result.Tabs[i+1].SectionNumber)
	}
}

func TestGenerateRealRun(t *testing.T) {
	client := newDistinctDraftClient()
	o := NewOrchestrator(DefaultRoster(), client, "", DefaultQualityConfig(), DefaultAssembleConfig())

	result, err := o.Generate(context.Background(), testSnapshot())

	require.NoError(t, err)
	assert.Equal(t, models.MethodMultiAgentParallel, result.Method)
	assert.Equal(t, "gpt-4-turbo-multi-agent", result.Model)
	assert.Equal(t, 8, result.AgentsDeployed)
	assert.Equal(t, 8, result.SectionsGenerated)
	require.Len(t, result.Tabs, 9)
	assert.Equal(t, 800, result.TokensUsed)
	assert.GreaterOrEqual(t, result.ProcessingTimeMS, int64(0))
}

func TestGenerateIsolatesAgentFailure(t *testing.T) {
	roster := DefaultRoster()
	var securityPrompt string
	for _, spec := range roster {
		if spec.Name == AgentSecurity {
			securityPrompt = spec.SystemPrompt
		}
	}
	require.NotEmpty(t, securityPrompt)

	client := newDistinctDraftClient(securityPrompt)
	o := NewOrchestrator(roster, client, "", DefaultQualityConfig(), DefaultAssembleConfig())

	result, err := o.Generate(context.Background(), testSnapshot())

	require.NoError(t, err)
	// The failed agent still contributes a section, filled with simulated
	// content, and the run keeps its backend method tag.
	assert.Equal(t, models.MethodMultiAgentParallel, result.Method)
	assert.Equal(t, 8, result.SectionsGenerated)
	require.Len(t, result.Tabs, 9)

	var security *models.SectionRecord
	for i := range result.Tabs {
		if result.Tabs[i].Agent == AgentSecurity {
			security = &result.Tabs[i]
		}
	}
	require.NotNil(t, security)
	assert.Contains(t, security.Content, "Security Implementation Analysis")
}

// refusingClient fails every completion call, as a hard-down backend would.
type refusingClient struct{}

func (refusingClient) Complete(_ context.Context, _ string, _ []ChatMessage) (string, int, error) {
	return "", 0, errors.New("upstream unavailable")
}

func TestGenerateFallsBackToSimulationWhenBackendIsDown(t *testing.T) {
	o := NewOrchestrator(DefaultRoster(), refusingClient{}, "", DefaultQualityConfig(), DefaultAssembleConfig())

	result, err := o.Generate(context.Background(), testSnapshot())

	require.NoError(t, err)
	assert.Equal(t, models.MethodMultiAgentSimulation, result.Method)
	assert.Equal(t, models.MethodMultiAgentSimulation, result.Model)
	assert.Equal(t, 8, result.SectionsGenerated)
	require.Len(t, result.Tabs, 9)
	assert.Equal(t, simulatedDurationMS(2), result.ProcessingTimeMS)
	assert.Equal(t, 0, result.TokensUsed)
}

func TestGenerateEmptyRoster(t *testing.T) {
	o := NewOrchestrator(nil, nil, "", DefaultQualityConfig(), DefaultAssembleConfig())

	_, err := o.Generate(context.Background(), testSnapshot())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty agent roster")
}

func TestCrossReferenceLinksRelatedSections(t *testing.T) {
	o := NewOrchestrator(DefaultRoster(), nil, "", DefaultQualityConfig(), DefaultAssembleConfig())

	results := []AgentResult{
		{Agent: AgentCodeArchitecture, Content: "## Code\n\ncodebase layering detail here"},
		{Agent: AgentSystemArchitecture, Content: "## System\n\ntopology and tier boundaries here"},
		{Agent: AgentAPIIntegration, Content: "## API\n\nendpoint catalogue here"},
		{Agent: AgentSecurity, Content: "## Security\n\ntoken validation rules here"},
	}

	linked := o.crossReference(results, testSnapshot())

	byAgent := make(map[string]string)
	for _, r := range linked {
		byAgent[r.Agent] = r.Content
	}

	assert.Contains(t, byAgent[AgentCodeArchitecture], "### Integration Notes")
	assert.Contains(t, byAgent[AgentCodeArchitecture], "topology and tier boundaries here")

	assert.Contains(t, byAgent[AgentSystemArchitecture], "### Implementation References")
	assert.Contains(t, byAgent[AgentSystemArchitecture], "codebase layering detail here")

	assert.Contains(t, byAgent[AgentAPIIntegration], "### Related Documentation")
	assert.Contains(t, byAgent[AgentAPIIntegration], "token validation rules here")

	assert.NotContains(t, byAgent[AgentSecurity], "### Integration Notes")

	for _, content := range byAgent {
		assert.Contains(t, content, "### Project Context")
		assert.Contains(t, content, "2 project files")
		assert.Contains(t, content, "Billing Service")
	}
}

func TestCrossReferencePreviewsExcludeLaterAdditions(t *testing.T) {
	o := NewOrchestrator(DefaultRoster(), nil, "", DefaultQualityConfig(), DefaultAssembleConfig())

	results := []AgentResult{
		{Agent: AgentCodeArchitecture, Content: "## Code\n\nshort code body"},
		{Agent: AgentSystemArchitecture, Content: "## System\n\nshort system body"},
	}

	linked := o.crossReference(results, testSnapshot())

	// The quoted preview comes from the original content, never from another
	// section's appended cross-reference blocks.
	for _, r := range linked {
		if r.Agent == AgentCodeArchitecture {
			assert.NotContains(t, r.Content, "Implementation References\n\nSee the code architecture analysis"+
				"\n\n> short code body")
			quote := strings.SplitN(r.Content, "> ", 2)
			require.Len(t, quote, 2)
			assert.True(t, strings.HasPrefix(quote[1], "short system body"))
		}
	}
}

func TestContentPreview(t *testing.T) {
	content := "# Heading\n\nfirst line of body\nsecond line\n## Sub\nthird line"
	preview := contentPreview(content, 300)
	assert.Equal(t, "first line of body second line third line", preview)

	long := strings.Repeat("word ", 100)
	cut := contentPreview(long, 50)
	assert.Len(t, cut, 53)
	assert.True(t, strings.HasSuffix(cut, "..."))
}
