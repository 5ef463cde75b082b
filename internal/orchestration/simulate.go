package orchestration

import (
	"fmt"
	"strings"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

// simulationProfile is the canned shape of one agent's simulated section.
// Narratives are deliberately distinct per agent so simulated sections
// survive similarity deduplication during assembly.
type simulationProfile struct {
	Title       string
	Description string
	Narrative   string
	Topics      []string
	TopicNotes  []string
}

// simulationProfiles drives backend-free generation. The output is stable
// for a given snapshot so demo environments produce repeatable documents.
var simulationProfiles = map[string]simulationProfile{
	AgentCodeArchitecture: {
		Title:       "Code Architecture Analysis",
		Description: "Structure and organization of the project source code.",
		Narrative: "The codebase is organized into cohesive modules with clear ownership " +
			"boundaries. Entry points delegate to focused packages, shared utilities are " +
			"isolated from business logic, and naming follows consistent conventions. " +
			"Classes and functions keep single responsibilities, dependencies point inward " +
			"from infrastructure toward the domain core, and circular imports are absent. " +
			"Refactoring opportunities concentrate around long functions and duplicated " +
			"helper routines that could be extracted into reusable components. Error " +
			"propagation stays explicit throughout the call graph, constructors return " +
			"concrete types while consumers accept abstractions, and configuration knobs " +
			"remain grouped near the composition root where wiring decisions live. " +
			"Interface seams sit exactly where volatility concentrates, value objects stay " +
			"immutable once constructed, and package boundaries double as compilation " +
			"firewalls that localize rebuilds. Test doubles plug in cleanly at those seams, " +
			"which keeps unit suites fast and hermetic without invasive mocking frameworks.",
		Topics: []string{"Module layout", "Key components", "Design patterns", "Dependency boundaries"},
		TopicNotes: []string{
			"Directories mirror feature areas rather than technical layers, keeping related behavior discoverable in one place.",
			"Central orchestrating objects coordinate smaller collaborators that each encapsulate a narrow, testable capability.",
			"Factory constructors, adapter wrappers, and strategy selection appear repeatedly as the dominant structural idioms.",
			"Inner packages never import outer ones, preserving a strict acyclic relationship between abstraction levels.",
		},
	},
	AgentSystemArchitecture: {
		Title:       "System Architecture Analysis",
		Description: "High-level system design and component interaction.",
		Narrative: "At the system level the application splits into presentation, service, " +
			"and persistence tiers communicating over well-defined interfaces. Data flows " +
			"from client requests through validation into the processing layer, with state " +
			"changes persisted transactionally. The topology supports horizontal scaling of " +
			"stateless tiers while stateful storage remains centralized. Integration points " +
			"with external systems are mediated by adapters, keeping vendor specifics out " +
			"of the core design. Failure domains are separated so a degraded downstream " +
			"collaborator slows a single capability instead of cascading outward, and " +
			"asynchronous work hands off through queues sized for expected burst traffic. " +
			"Capacity planning assumes peak concurrency double the observed median, health " +
			"probes distinguish liveness trouble from temporary readiness dips, and every " +
			"tier publishes telemetry tagged consistently enough to trace a request across " +
			"hops. Disaster recovery relies on replicated snapshots restorable within an " +
			"agreed objective measured in minutes, not hours.",
		Topics: []string{"Component overview", "Data flow", "Technology stack", "Integration points"},
		TopicNotes: []string{
			"Each tier owns a distinct lifecycle, scaling policy, and deployment cadence independent of its neighbors.",
			"Requests traverse validation, enrichment, and persistence stages with backpressure applied at every queue handoff.",
			"Framework and runtime selections favor boring, well-supported technology over novelty for long-term maintainability.",
			"Boundary adapters translate external protocols into internal commands, insulating the core from upstream churn.",
		},
	},
	AgentAPIIntegration: {
		Title:       "API Integration Analysis",
		Description: "Service interfaces and external integrations.",
		Narrative: "Exposed endpoints follow resource-oriented routing with JSON request and " +
			"response bodies. Status codes distinguish client mistakes from server faults, " +
			"payload validation happens at the boundary, and error envelopes carry machine " +
			"readable codes. Outbound calls to third-party services are wrapped with " +
			"timeouts and retries. Versioning strategy and pagination conventions should be " +
			"formalized before the surface grows further. Content negotiation stays minimal, " +
			"idempotency applies to every read, and multipart uploads accept mixed binary " +
			"plus textual attachments under a configurable size ceiling per request.",
		Topics: []string{"Exposed endpoints", "Request and response formats", "Error handling", "External services"},
		TopicNotes: []string{
			"Routes group by resource noun with verbs expressed through standard methods instead of action suffixes.",
			"Schemas stay backward compatible by adding optional fields and never repurposing existing ones.",
			"Fault responses pair human-readable messages with stable machine codes clients can branch on safely.",
			"Third-party dependencies sit behind circuit breakers so sustained outages trip into fast rejection.",
		},
	},
	AgentSecurity: {
		Title:       "Security Implementation Analysis",
		Description: "Authentication, authorization, and data protection.",
		Narrative: "Authentication relies on signed bearer tokens with bounded lifetimes, and " +
			"passwords are stored only as salted hashes. Authorization checks gate mutating " +
			"operations, secrets are injected through environment configuration rather than " +
			"committed to the repository, and transport encryption is assumed at the edge. " +
			"Hardening work should prioritize input sanitization on upload paths, rate " +
			"limiting on credential endpoints, and audit logging of privileged actions. " +
			"Token validation rejects unexpected signing algorithms outright, expiry windows " +
			"balance usability against exposure, and ownership checks guard every mutation " +
			"so tenants can never reach records belonging to someone else.",
		Topics: []string{"Authentication flow", "Credential handling", "Input validation", "Hardening recommendations"},
		TopicNotes: []string{
			"Sign-in exchanges verified credentials for a short-lived signed token renewed through an explicit refresh step.",
			"Nothing secret persists in plaintext; hashing uses an adaptive cost factor tuned for current hardware.",
			"Every externally supplied value passes allowlist checks before reaching query construction or template rendering.",
			"Priorities include dependency vulnerability scanning, least-privilege database roles, and tamper-evident audit trails.",
		},
	},
	AgentDeployment: {
		Title:       "Deployment Operations Analysis",
		Description: "Setup, deployment, and operational procedures.",
		Narrative: "Environment setup requires a container runtime, a relational database, " +
			"and a small set of environment variables documented alongside the build. The " +
			"deployment procedure builds immutable images, applies schema migrations before " +
			"rollout, and exposes liveness plus readiness probes for the scheduler. Rollback " +
			"amounts to redeploying the previous image tag. Day-two operations center on log " +
			"aggregation, capacity monitoring, and scheduled backup verification. Secrets " +
			"arrive through the orchestrator's injection mechanism, horizontal replicas " +
			"share no local disk, and graceful shutdown drains in-flight work before the " +
			"process exits so rolling updates never drop requests.",
		Topics: []string{"Environment setup", "Build and deployment", "Configuration", "Monitoring"},
		TopicNotes: []string{
			"A fresh workstation reaches a running instance with three commands: clone, configure, and compose up.",
			"Pipelines promote the same artifact through staging gates, forbidding rebuilds between environments.",
			"Twelve-factor style variables cover tunables, while defaults keep local development friction-free.",
			"Dashboards track saturation, error ratios, and latency percentiles with alerts on sustained deviation.",
		},
	},
	AgentQualityAssurance: {
		Title:       "Quality Assurance Analysis",
		Description: "Testing strategy and quality controls.",
		Narrative: "The testing strategy layers fast unit suites under slower integration " +
			"coverage, exercising both success paths and failure injection. Fixtures build " +
			"realistic input data, assertions verify observable behavior rather than " +
			"internals, and continuous integration blocks merges on regressions. Coverage " +
			"gaps cluster around concurrent execution paths and upload edge cases, which " +
			"deserve targeted scenarios before the next release. Flaky cases are quarantined " +
			"quickly, deterministic seeds keep generative inputs reproducible, and mutation " +
			"checks occasionally validate that the assertions still bite.",
		Topics: []string{"Test strategy", "Existing suites", "Coverage expectations", "Quality gates"},
		TopicNotes: []string{
			"The pyramid stays bottom-heavy: abundant unit checks, selective integration proofs, minimal end-to-end smoke.",
			"Suites run hermetically with doubles substituting for network collaborators and databases spun up per run.",
			"Critical business rules demand branch-level verification while glue code tolerates lighter scrutiny.",
			"Merges require green pipelines, reviewed diffs, and no new static-analysis findings above the agreed severity.",
		},
	},
	AgentUserDocumentation: {
		Title:       "User Documentation",
		Description: "End-user guides and feature walkthroughs.",
		Narrative: "New users start by creating an account, signing in, and uploading their " +
			"first set of files through the guided workflow. The main screens surface live " +
			"progress, finished results organized into readable tabs, and editing tools for " +
			"polishing the output. Common troubleshooting steps cover stalled uploads, " +
			"browser refresh during processing, and recovering from expired sessions. A " +
			"walkthrough of each feature keeps the learning curve gentle for non-technical " +
			"audiences. Keyboard shortcuts accelerate frequent actions, notifications " +
			"announce when long-running work finishes, and exported results download in " +
			"portable formats suitable for sharing outside the product.",
		Topics: []string{"Getting started", "Main features", "Common workflows", "Troubleshooting"},
		TopicNotes: []string{
			"First-run onboarding walks through account creation, a sample upload, and interpreting the finished result.",
			"Highlights include drag-and-drop ingestion, live status updates, tabbed reading views, and inline editing.",
			"Typical journeys cover creating a workspace, inviting reviewers, and exporting polished deliverables.",
			"Self-service remedies resolve stuck spinners, login loops, and mismatched file format complaints.",
		},
	},
	AgentPerformance: {
		Title:       "Performance Optimization Analysis",
		Description: "Performance characteristics and tuning opportunities.",
		Narrative: "Latency is dominated by upstream model calls executed concurrently, so " +
			"wall-clock time tracks the slowest branch rather than the sum. Throughput " +
			"scales with worker parallelism until connection pools saturate. Memory stays " +
			"bounded because large payloads stream instead of buffering. Profiling suggests " +
			"caching repeated lookups, batching small database writes, and tightening " +
			"timeout budgets as the highest-leverage optimizations. Garbage collection " +
			"pressure stays low when allocations reuse buffers, while tail percentiles " +
			"benefit most from hedging slow upstream calls against a second attempt.",
		Topics: []string{"Hot paths", "Caching behavior", "Concurrency", "Optimization opportunities"},
		TopicNotes: []string{
			"Profiles show most cycles spent awaiting remote inference, dwarfing local parsing and serialization costs.",
			"Memoizing pure derivations and reusing pooled connections eliminates the bulk of redundant work observed.",
			"Fan-out stages bound their parallelism explicitly, preventing thundering herds against shared resources.",
			"Quick wins: precomputed summaries, lazy image decoding, and trimming oversized payloads before transmission.",
		},
	},
}

// simulateContent renders a deterministic markdown section for the agent
// from the snapshot alone. The shape satisfies the assembly validation
// rules so simulated runs produce full documents.
func (a *Agent) simulateContent(snapshot models.ProjectSnapshot) string {
	profile, ok := simulationProfiles[a.spec.Name]
	if !ok {
		profile = simulationProfile{
			Title:       strings.Replace(a.spec.Name, " Agent", " Analysis", 1),
			Description: "Analysis of " + a.spec.Focus + ".",
			Narrative:   "Review of " + a.spec.Focus + " for this project.",
			Topics:      []string{"Overview", "Findings", "Recommendations"},
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", profile.Title)
	fmt.Fprintf(&b, "%s\n\n", profile.Description)
	fmt.Fprintf(&b, "%s\n\n", profile.Narrative)
	fmt.Fprintf(&b, "The **%s** project contains %d files and is assessed as %s (%s complexity).\n\n",
		snapshot.Title, len(snapshot.Files), detectProjectType(snapshot.Files), assessComplexity(len(snapshot.Files)))

	for i, topic := range profile.Topics {
		fmt.Fprintf(&b, "### %s\n\n", topic)
		if i < len(profile.TopicNotes) {
			fmt.Fprintf(&b, "%s\n\n", profile.TopicNotes[i])
		}
		count := 0
		for _, f := range snapshot.Files {
			fmt.Fprintf(&b, "- `%s` (%s, %d bytes) is relevant to %s\n",
				f.Name, fileCategory(f.Name), f.Size, strings.ToLower(topic))
			count++
			if count >= 3 {
				break
			}
		}
		if count == 0 {
			b.WriteString("- No project files uploaded yet; conclusions are based on the project description\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "### Summary\n\n")
	fmt.Fprintf(&b, "This section highlights the most important aspects of %s for %s. ",
		a.spec.Focus, snapshot.Title)
	b.WriteString("Connect a language model backend to replace this simulated output " +
		"with a full project-specific analysis.\n\n")
	b.WriteString("```text\n")
	fmt.Fprintf(&b, "agent: %s\nfiles_reviewed: %d\n", a.spec.Name, len(snapshot.Files))
	b.WriteString("```\n")
	return b.String()
}

// simulatedDurationMS models generation time growing with project size.
func simulatedDurationMS(fileCount int) int64 {
	return int64((3.0 + 0.8*float64(fileCount)) * 1000)
}
