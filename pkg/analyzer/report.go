package analyzer

import (
	"fmt"
	"strings"
	"time"
)

const reportRule = "======================================================================"

// RenderText formats a batch report as a plain-text security report, shared by
// the CLI output and the report export endpoint.
func RenderText(batch *BatchReport) string {
	var b strings.Builder

	generated := batch.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}

	b.WriteString(reportRule + "\n")
	b.WriteString("CRUMBS - COOKIE SECURITY REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format(time.RFC3339))
	b.WriteString(reportRule + "\n\n")

	fmt.Fprintf(&b, "SUMMARY: Analyzed %d cookies\n", batch.Stats.TotalCookies)
	fmt.Fprintf(&b, "  Critical: %d\n", batch.Stats.Critical)
	fmt.Fprintf(&b, "  High:     %d\n", batch.Stats.High)
	fmt.Fprintf(&b, "  Medium:   %d\n", batch.Stats.Medium)
	fmt.Fprintf(&b, "  Low:      %d\n", batch.Stats.Low)
	b.WriteString("\n")
	b.WriteString(reportRule + "\n")
	b.WriteString("DETAILED FINDINGS\n")
	b.WriteString(reportRule + "\n\n")

	for i, r := range batch.Results {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, r.CookieName, r.CookieDomain)
		fmt.Fprintf(&b, "   Type: %s (confidence: %.0f%%)\n",
			r.Classification.Type, r.Classification.Confidence*100)
		fmt.Fprintf(&b, "   Severity: %s\n\n", strings.ToUpper(string(r.Assessment.Severity)))

		for _, issue := range r.Issues {
			fmt.Fprintf(&b, "   [%s] %s\n", strings.ToUpper(string(issue.Severity)), issue.Title)
			fmt.Fprintf(&b, "   %s\n\n", issue.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString(reportRule + "\n")
	b.WriteString("This report was generated by crumbs\n")
	b.WriteString("A tool for detecting cookie security risks\n")
	b.WriteString(reportRule + "\n")

	return b.String()
}
