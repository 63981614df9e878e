package services

import (
	"regexp"
	"strings"
)

// DiagnosisSection is one titled list of a HeavyDiag answer.
type DiagnosisSection struct {
	Title string
	Items []string
}

// DiagnosisReport is a HeavyDiag answer split into its sections.
type DiagnosisReport struct {
	Question  string
	Context   string
	Symptoms  DiagnosisSection
	Causes    DiagnosisSection
	Steps     DiagnosisSection
	Solutions DiagnosisSection
	Safety    string
	Notes     []string // text outside any known section
	Raw       string
}

var (
	sectionTitles = []string{SectionSymptoms, SectionCauses, SectionSteps, SectionSolutions, SectionSafety}

	// A heading ends at its colon, its closing "**" or the end of the line.
	// Whatever follows on the same line is the section's first content.
	headingPattern = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?\*{0,2}\s*(` + quotedTitles() + `)` +
		`(?:\s*:\s*\*{0,2}|\s*\*{2}\s*:?|\s*$)\s*(.*)$`)
	bulletPattern = regexp.MustCompile(`^(?:[*\-•]|\d+[.)])\s+(.*)$`)
)

func quotedTitles() string {
	quoted := make([]string, len(sectionTitles))
	for i, title := range sectionTitles {
		quoted[i] = regexp.QuoteMeta(title)
	}
	return strings.Join(quoted, "|")
}

// Sections returns the list sections in template order.
func (r *DiagnosisReport) Sections() []DiagnosisSection {
	return []DiagnosisSection{r.Symptoms, r.Causes, r.Steps, r.Solutions}
}

// Structured reports whether any template section was recognised.
func (r *DiagnosisReport) Structured() bool {
	for _, s := range r.Sections() {
		if len(s.Items) > 0 {
			return true
		}
	}
	return r.Safety != ""
}

// ParseDiagnosis splits a Markdown answer into the HeavyDiag sections.
func ParseDiagnosis(text string) *DiagnosisReport {
	report := &DiagnosisReport{
		Symptoms:  DiagnosisSection{Title: SectionSymptoms},
		Causes:    DiagnosisSection{Title: SectionCauses},
		Steps:     DiagnosisSection{Title: SectionSteps},
		Solutions: DiagnosisSection{Title: SectionSolutions},
		Raw:       text,
	}

	var current *DiagnosisSection
	inSafety := false
	var safety []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if title, rest, ok := sectionHeading(line); ok {
			inSafety = title == SectionSafety
			current = report.section(title)
			if rest == "" {
				continue
			}
			line = rest
		}

		switch {
		case inSafety:
			safety = append(safety, line)
		case current != nil:
			if m := bulletPattern.FindStringSubmatch(line); m != nil {
				current.Items = append(current.Items, stripEmphasis(m[1]))
			} else if n := len(current.Items); n > 0 {
				current.Items[n-1] += " " + stripEmphasis(line)
			} else {
				current.Items = append(current.Items, stripEmphasis(line))
			}
		default:
			report.Notes = append(report.Notes, line)
		}
	}

	report.Safety = stripEmphasis(strings.Join(safety, " "))
	return report
}

func (r *DiagnosisReport) section(title string) *DiagnosisSection {
	switch title {
	case SectionSymptoms:
		return &r.Symptoms
	case SectionCauses:
		return &r.Causes
	case SectionSteps:
		return &r.Steps
	case SectionSolutions:
		return &r.Solutions
	}
	return nil
}

// sectionHeading recognises "**Título:**", "## Título" and bulleted
// "* **Título:**" headings, returning any text that trails the heading.
func sectionHeading(line string) (title, rest string, ok bool) {
	if m := bulletPattern.FindStringSubmatch(line); m != nil {
		line = m[1]
	}
	if !strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "#") {
		return "", "", false
	}
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	for _, known := range sectionTitles {
		if strings.EqualFold(m[1], known) {
			return known, strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}

func stripEmphasis(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
}
