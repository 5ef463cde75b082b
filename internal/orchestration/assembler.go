package orchestration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

// Assembler turns raw agent outputs into an ordered, deduplicated document.
// Assembly is pure and deterministic: the same inputs always produce the
// same sections and combined markdown.
type Assembler struct {
	cfg AssembleConfig
}

// NewAssembler builds an assembler with the given validation settings.
func NewAssembler(cfg AssembleConfig) *Assembler {
	return &Assembler{cfg: cfg}
}

// failurePhrases mark content that is an apology or an error message rather
// than real documentation. Matching is case-insensitive on cleaned content.
var failurePhrases = []string{
	"no content available",
	"content not available",
	"failed to generate",
	"error occurred",
	"please try again",
	"analysis failed",
}

// titleNoiseTokens are dropped when normalizing titles for deduplication so
// "Security Implementation Analysis" and "Security Documentation" collide.
var titleNoiseTokens = []string{
	"analysis", "documentation", "implementation",
	"operations", "assurance", "optimization",
}

var (
	emptyCodeBlockRE = regexp.MustCompile("```[\\w-]*[ \t]*\n\\s*```")
	fencedBlockRE    = regexp.MustCompile("(?s)```[\\w-]*\n(.*?)```")
	emptyBulletRE    = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]*$\n?`)
	whitespaceRE     = regexp.MustCompile(`\s+`)
)

// Assemble validates, deduplicates, orders, and numbers the agent sections,
// then renders the combined markdown document. It never returns zero
// sections: when every candidate is rejected it emits a fallback section.
func (as *Assembler) Assemble(projectTitle string, results []AgentResult) (string, []models.SectionRecord) {
	ordered := append([]AgentResult{}, results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return sectionRank(ordered[i].Agent) < sectionRank(ordered[j].Agent)
	})

	var (
		sections    []models.SectionRecord
		seenTitles  = make(map[string]bool)
		seenHashes  = make(map[string]bool)
		acceptedTxt []string
	)
	for _, r := range ordered {
		content := cleanContent(r.Content)
		if !as.validSection(content) {
			continue
		}
		title := sectionTitle(r.Agent)
		normTitle := normalizeTitle(title)
		if seenTitles[normTitle] {
			continue
		}
		fp := fingerprint(content)
		if seenHashes[fp] {
			continue
		}
		if as.tooSimilar(content, acceptedTxt) {
			continue
		}
		seenTitles[normTitle] = true
		seenHashes[fp] = true
		acceptedTxt = append(acceptedTxt, content)
		sections = append(sections, models.SectionRecord{
			Title:     title,
			Content:   content,
			WordCount: countWords(content),
			Agent:     r.Agent,
		})
	}

	if len(sections) == 0 {
		sections = []models.SectionRecord{as.fallbackSection(projectTitle, ordered)}
	}
	for i := range sections {
		sections[i].SectionNumber = i + 1
	}

	if len(sections) > 1 {
		overview := as.overviewSection(projectTitle, sections)
		sections = append([]models.SectionRecord{overview}, sections...)
	}

	var doc strings.Builder
	for _, s := range sections {
		if s.SectionNumber == 0 {
			doc.WriteString(s.Content)
			doc.WriteString("\n\n---\n")
			continue
		}
		fmt.Fprintf(&doc, "# %d. %s\n%s\n\n---\n", s.SectionNumber, s.Title, s.Content)
	}
	return doc.String(), sections
}

// validSection applies the minimum-substance rules to cleaned content.
func (as *Assembler) validSection(content string) bool {
	lowered := strings.ToLower(content)
	for _, phrase := range failurePhrases {
		if strings.Contains(lowered, phrase) {
			return false
		}
	}

	var bodyWords, bodyLines int
	for _, line := range strings.Split(content, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		bodyLines++
		bodyWords += len(strings.Fields(t))
	}
	if bodyWords < as.cfg.MinWords || bodyLines < as.cfg.MinLines {
		return false
	}

	flat := strings.Map(func(r rune) rune {
		switch r {
		case '#', '\n', ' ', '-', '*', '`':
			return -1
		}
		return r
	}, content)
	return len(flat) >= as.cfg.MinFlatChars
}

// tooSimilar rejects content whose word-set overlap with any already
// accepted section exceeds the threshold.
func (as *Assembler) tooSimilar(content string, accepted []string) bool {
	words := wordSet(content)
	for _, other := range accepted {
		if similarity(words, wordSet(other)) > as.cfg.SimilarityThreshold {
			return true
		}
	}
	return false
}

// similarity is the shared-word ratio |A∩B| / max(|A|, |B|).
func similarity(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for w := range small {
		if large[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(large))
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

// fingerprint hashes content with casing and whitespace differences erased,
// so trivially reformatted duplicates collide.
func fingerprint(content string) string {
	normalized := whitespaceRE.ReplaceAllString(strings.ToLower(content), " ")
	sum := sha256.Sum256([]byte(strings.TrimSpace(normalized)))
	return hex.EncodeToString(sum[:])
}

// sectionTitle derives the display title from the agent name.
func sectionTitle(agentName string) string {
	if strings.Contains(agentName, " Agent") {
		return strings.Replace(agentName, " Agent", " Analysis", 1)
	}
	return agentName
}

// normalizeTitle strips noise tokens so near-identical titles deduplicate.
func normalizeTitle(title string) string {
	t := strings.ToLower(title)
	for _, tok := range titleNoiseTokens {
		t = strings.ReplaceAll(t, tok, "")
	}
	return strings.Join(strings.Fields(t), " ")
}

// cleanContent removes markdown artifacts that models commonly emit: empty
// fenced code blocks, code blocks with no real code, and dangling bullets.
func cleanContent(content string) string {
	content = emptyCodeBlockRE.ReplaceAllString(content, "")
	content = fencedBlockRE.ReplaceAllStringFunc(content, func(block string) string {
		m := fencedBlockRE.FindStringSubmatch(block)
		if len(m) < 2 {
			return block
		}
		if isTrivialCode(m[1]) {
			return ""
		}
		return block
	})
	content = emptyBulletRE.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// isTrivialCode reports whether every line of a code block is an import,
// a comment, or a bare file reference.
func isTrivialCode(code string) bool {
	lines := 0
	for _, line := range strings.Split(code, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		lines++
		switch {
		case strings.HasPrefix(t, "import "), strings.HasPrefix(t, "from "):
		case strings.HasPrefix(t, "#"), strings.HasPrefix(t, "//"):
		case !strings.ContainsAny(t, " \t") && strings.Contains(t, "."):
		default:
			return false
		}
	}
	return lines > 0
}

// overviewSection builds the table-of-contents tab placed before the first
// numbered section. It carries section number zero.
func (as *Assembler) overviewSection(projectTitle string, sections []models.SectionRecord) models.SectionRecord {
	var b strings.Builder
	b.WriteString("# Documentation Overview\n\n")
	fmt.Fprintf(&b, "Complete documentation for **%s**, produced by %d specialist analyses.\n\n",
		projectTitle, len(sections))
	b.WriteString("## Contents\n\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "%d. %s (%d words)\n", s.SectionNumber, s.Title, s.WordCount)
	}
	content := b.String()
	return models.SectionRecord{
		Title:         "Documentation Overview",
		Content:       content,
		WordCount:     countWords(content),
		Agent:         AgentOrchestrator,
		SectionNumber: 0,
	}
}

// fallbackSection guarantees a non-empty document when every agent section
// was rejected. It keeps the longest raw output that is not an outright
// failure message.
func (as *Assembler) fallbackSection(projectTitle string, results []AgentResult) models.SectionRecord {
	var longest string
	for _, r := range results {
		lowered := strings.ToLower(r.Content)
		tainted := false
		for _, phrase := range failurePhrases {
			if strings.Contains(lowered, phrase) {
				tainted = true
				break
			}
		}
		if !tainted && len(r.Content) > len(longest) {
			longest = r.Content
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Project Documentation\n\nDocumentation for **%s**.\n\n", projectTitle)
	if trimmed := strings.TrimSpace(longest); trimmed != "" {
		b.WriteString(trimmed)
		b.WriteString("\n")
	} else {
		b.WriteString("Documentation generation did not produce detailed sections for this run. " +
			"Regenerate the documentation to retry with the full agent team.\n")
	}
	content := b.String()
	return models.SectionRecord{
		Title:     "Project Documentation",
		Content:   content,
		WordCount: countWords(content),
		Agent:     AgentOrchestrator,
	}
}
