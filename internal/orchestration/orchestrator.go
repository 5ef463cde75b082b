package orchestration

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

// DefaultModel is the backend model used when none is configured.
const DefaultModel = "gpt-4-turbo"

// Orchestrator fans a project snapshot out to the agent roster in parallel,
// cross-references the finished sections, and assembles the final document.
type Orchestrator struct {
	roster    []AgentSpec
	client    ChatClient
	model     string
	quality   QualityConfig
	assembler *Assembler
}

// NewOrchestrator wires an orchestrator. A nil client selects simulation
// mode for every run.
func NewOrchestrator(roster []AgentSpec, client ChatClient, model string, quality QualityConfig, assemble AssembleConfig) *Orchestrator {
	if model == "" {
		model = DefaultModel
	}
	return &Orchestrator{
		roster:    roster,
		client:    client,
		model:     model,
		quality:   quality,
		assembler: NewAssembler(assemble),
	}
}

// agentOutcome carries one agent's result or failure through the fan-in
// channel. Exactly one of result/err is meaningful.
type agentOutcome struct {
	agent  string
	result AgentResult
	err    error
}

// Generate runs the full pipeline for one snapshot. Individual agent
// failures are isolated: a failed agent contributes simulated content instead
// of removing its section, and a run where every agent degraded is tagged as
// a simulation run. Only an empty roster returns an error.
func (o *Orchestrator) Generate(ctx context.Context, snapshot models.ProjectSnapshot) (models.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.generate", trace.WithAttributes(
		attribute.String("project.title", snapshot.Title),
		attribute.Int("project.files", len(snapshot.Files)),
		attribute.Int("agents.deployed", len(o.roster)),
		attribute.Bool("simulated", o.client == nil),
	))
	defer span.End()

	start := time.Now()
	if len(o.roster) == 0 {
		return models.GenerationResult{}, fmt.Errorf("orchestrator: empty agent roster")
	}

	outcomes := make(chan agentOutcome, len(o.roster))
	agents := make(map[string]*Agent, len(o.roster))
	for _, spec := range o.roster {
		agent := NewAgent(spec, o.client, o.model, o.quality)
		agents[agent.Name()] = agent
		go func(agent *Agent) {
			result, err := agent.Run(ctx, snapshot, nil)
			outcomes <- agentOutcome{agent: agent.Name(), result: result, err: err}
		}(agent)
	}

	var (
		results []AgentResult
		tokens  int
	)
	for range o.roster {
		out := <-outcomes
		tokens += out.result.Tokens
		if out.err != nil {
			log.Printf(`{"level":"error","component":"orchestration","agent":%q,"error":%q}`,
				out.agent, out.err.Error())
			out.result = AgentResult{
				Agent:     out.agent,
				Content:   agents[out.agent].simulateContent(snapshot),
				Tokens:    out.result.Tokens,
				Attempts:  out.result.Attempts,
				Simulated: true,
			}
		}
		results = append(results, out.result)
	}

	// A backend run where every agent degraded is a simulation run in all
	// but name; tag it as one so readers know no model output is present.
	degraded := o.client != nil
	for _, r := range results {
		if !r.Simulated {
			degraded = false
			break
		}
	}
	if degraded {
		log.Printf(`{"level":"warn","component":"orchestration","event":"backend_unavailable","project":%q,"message":"all agents fell back to simulated content"}`,
			snapshot.Title)
	}

	results = o.crossReference(results, snapshot)
	content, tabs := o.assembler.Assemble(snapshot.Title, results)

	sectionsGenerated := 0
	for _, t := range tabs {
		if t.SectionNumber > 0 {
			sectionsGenerated++
		}
	}

	result := models.GenerationResult{
		Content:           content,
		Tabs:              tabs,
		TokensUsed:        tokens,
		GeneratedAt:       time.Now().UTC(),
		AgentsDeployed:    len(o.roster),
		SectionsGenerated: sectionsGenerated,
	}
	if o.client == nil || degraded {
		result.Model = models.MethodMultiAgentSimulation
		result.Method = models.MethodMultiAgentSimulation
		result.ProcessingTimeMS = simulatedDurationMS(len(snapshot.Files))
	} else {
		result.Model = o.model + "-multi-agent"
		result.Method = models.MethodMultiAgentParallel
		result.ProcessingTimeMS = time.Since(start).Milliseconds()
	}

	span.SetAttributes(
		attribute.Int("result.sections", sectionsGenerated),
		attribute.Int("result.tokens", tokens),
	)
	log.Printf(`{"level":"info","component":"orchestration","event":"generation_complete","project":%q,"sections":%d,"tokens":%d,"method":%q,"duration_ms":%d}`,
		snapshot.Title, sectionsGenerated, tokens, result.Method, result.ProcessingTimeMS)
	return result, nil
}

// crossReference appends linking subsections after all agents finish, so
// related sections point at each other and every section carries project
// context. Previews are taken from pre-cross-reference content.
func (o *Orchestrator) crossReference(results []AgentResult, snapshot models.ProjectSnapshot) []AgentResult {
	previews := make(map[string]string, len(results))
	for _, r := range results {
		previews[r.Agent] = contentPreview(r.Content, o.assembler.cfg.PreviewChars)
	}

	for i := range results {
		var b strings.Builder
		switch results[i].Agent {
		case AgentCodeArchitecture:
			if p, ok := previews[AgentSystemArchitecture]; ok {
				b.WriteString("\n\n### Integration Notes\n\nThe system architecture analysis provides complementary context for this section:\n\n> ")
				b.WriteString(p)
			}
		case AgentSystemArchitecture:
			if p, ok := previews[AgentCodeArchitecture]; ok {
				b.WriteString("\n\n### Implementation References\n\nSee the code architecture analysis for implementation-level detail:\n\n> ")
				b.WriteString(p)
			}
		case AgentAPIIntegration:
			if p, ok := previews[AgentSecurity]; ok {
				b.WriteString("\n\n### Related Documentation\n\nSecurity considerations for these interfaces are covered separately:\n\n> ")
				b.WriteString(p)
			}
		}
		fmt.Fprintf(&b, "\n\n### Project Context\n\nThis documentation was generated from %d project files uploaded for %s.\n",
			len(snapshot.Files), snapshot.Title)
		results[i].Content += b.String()
	}
	return results
}

// contentPreview returns the first n characters of content with markdown
// headings dropped, for quoting inside another section.
func contentPreview(content string, n int) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines = append(lines, line)
	}
	flat := strings.Join(strings.Fields(strings.Join(lines, " ")), " ")
	if len(flat) > n {
		return flat[:n] + "..."
	}
	return flat
}
