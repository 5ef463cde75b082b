package orchestration

// AgentSpec declares one specialist documentation agent: its identity, the
// system prompt that frames its analysis, and the keywords used to match
// extracted images to its section.
type AgentSpec struct {
	Name         string
	Focus        string
	SystemPrompt string
	Keywords     []string
}

// Canonical agent names. The order of sectionOrder below is also the
// canonical ordering of assembled documentation sections.
const (
	AgentCodeArchitecture   = "Code Architecture Agent"
	AgentSystemArchitecture = "System Architecture Agent"
	AgentAPIIntegration     = "API Integration Agent"
	AgentSecurity           = "Security Implementation Agent"
	AgentDeployment         = "Deployment Operations Agent"
	AgentQualityAssurance   = "Quality Assurance Agent"
	AgentUserDocumentation  = "User Documentation Agent"
	AgentPerformance        = "Performance Optimization Agent"
	AgentOrchestrator       = "Orchestrator"
)

// sectionOrder fixes the position of each agent's section in the final
// document regardless of completion order.
var sectionOrder = []string{
	AgentCodeArchitecture,
	AgentSystemArchitecture,
	AgentAPIIntegration,
	AgentSecurity,
	AgentDeployment,
	AgentQualityAssurance,
	AgentUserDocumentation,
	AgentPerformance,
}

// DefaultRoster returns the standard eight-agent team. Callers may slice or
// reorder it; the assembler always applies canonical section ordering.
func DefaultRoster() []AgentSpec {
	return []AgentSpec{
		{
			Name:  AgentCodeArchitecture,
			Focus: "code structure, modules, and implementation patterns",
			SystemPrompt: "You are a senior software architect analyzing a codebase. " +
				"Produce a thorough markdown section covering code organization, module " +
				"boundaries, key classes and functions, design patterns in use, and notable " +
				"implementation decisions. Reference concrete files from the project. Use " +
				"markdown headings, code blocks, and bullet lists. Write 800-1500 words.",
			Keywords: []string{"code", "function", "class", "module", "file"},
		},
		{
			Name:  AgentSystemArchitecture,
			Focus: "system design, components, and data flow",
			SystemPrompt: "You are a systems architect documenting overall system design. " +
				"Produce a markdown section covering high-level architecture, component " +
				"responsibilities, data flow between components, technology choices, and " +
				"integration topology. Ground every claim in the provided project files. Use " +
				"markdown headings, diagrams described in text, and bullet lists. Write 800-1500 words.",
			Keywords: []string{"architecture", "design", "system", "topology"},
		},
		{
			Name:  AgentAPIIntegration,
			Focus: "APIs, endpoints, and external integrations",
			SystemPrompt: "You are an API specialist documenting service interfaces. " +
				"Produce a markdown section covering exposed endpoints, request and response " +
				"shapes, authentication of API calls, error handling conventions, and external " +
				"service integrations found in the project. Include concrete examples in code " +
				"blocks. Use markdown headings and bullet lists. Write 800-1500 words.",
			Keywords: []string{"api", "endpoint", "request", "response", "interface"},
		},
		{
			Name:  AgentSecurity,
			Focus: "security posture, authentication, and data protection",
			SystemPrompt: "You are a security engineer reviewing a project. Produce a " +
				"markdown section covering authentication and authorization mechanisms, secret " +
				"and credential handling, input validation, transport security, and concrete " +
				"hardening recommendations based on the provided files. Use markdown headings, " +
				"code blocks, and bullet lists. Write 800-1500 words.",
			Keywords: []string{"security", "auth", "token", "password", "jwt", "mfa"},
		},
		{
			Name:  AgentDeployment,
			Focus: "setup, deployment, and operational concerns",
			SystemPrompt: "You are a DevOps engineer writing operational documentation. " +
				"Produce a markdown section covering environment setup, installation steps, " +
				"build and deployment procedure, configuration, containerization if present, " +
				"and day-two operations. Derive steps from the actual project files. Use " +
				"markdown headings, shell code blocks, and numbered lists. Write 800-1500 words.",
			Keywords: []string{"setup", "installation", "deploy", "infrastructure", "docker", "kubernetes"},
		},
		{
			Name:  AgentQualityAssurance,
			Focus: "testing strategy, coverage, and quality controls",
			SystemPrompt: "You are a QA lead documenting testing practice. Produce a " +
				"markdown section covering the testing strategy, existing test suites, coverage " +
				"expectations, quality gates, and recommendations for closing test gaps, all " +
				"grounded in the provided files. Use markdown headings, code blocks, and bullet " +
				"lists. Write 800-1500 words.",
			Keywords: []string{"test", "testing", "coverage", "qa", "assert"},
		},
		{
			Name:  AgentUserDocumentation,
			Focus: "end-user guides and walkthroughs",
			SystemPrompt: "You are a technical writer producing end-user documentation. " +
				"Produce a markdown section covering what the application does for its users, " +
				"a getting-started walkthrough, descriptions of the main user-facing features " +
				"and screens, and troubleshooting guidance. Keep the language non-technical " +
				"where possible. Use markdown headings and numbered lists. Write 800-1500 words.",
			Keywords: []string{"ui", "user", "interface", "walkthrough", "guide"},
		},
		{
			Name:  AgentPerformance,
			Focus: "performance characteristics and optimization",
			SystemPrompt: "You are a performance engineer analyzing a project. Produce a " +
				"markdown section covering likely performance characteristics, hot paths, " +
				"caching and concurrency behavior, resource usage, and concrete optimization " +
				"opportunities grounded in the provided files. Use markdown headings, code " +
				"blocks, and bullet lists. Write 800-1500 words.",
			Keywords: []string{"performance", "latency", "throughput", "metric", "profiling"},
		},
	}
}

// sectionRank returns the canonical position of an agent's section, or a
// large rank for unknown agents so they sort after the standard set.
func sectionRank(agentName string) int {
	for i, name := range sectionOrder {
		if name == agentName {
			return i
		}
	}
	return len(sectionOrder) + 1
}
