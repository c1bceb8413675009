// cmd/display_helpers.go - Shared display and formatting helpers
package cmd

import (
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
	"github.com/fatih/color"
)

func colorSeverity(severity types.Severity) string {
	switch severity {
	case types.SeverityCritical:
		return color.New(color.FgRed, color.Bold).Sprint("CRITICAL")
	case types.SeverityHigh:
		return color.New(color.FgRed).Sprint("HIGH")
	case types.SeverityMedium:
		return color.New(color.FgYellow).Sprint("MEDIUM")
	case types.SeverityLow:
		return color.New(color.FgCyan).Sprint("LOW")
	case types.SeverityInfo:
		return color.New(color.FgWhite).Sprint("INFO")
	default:
		return string(severity)
	}
}

func colorSeverityLabel(label string) string {
	return colorSeverity(types.Severity(label))
}
