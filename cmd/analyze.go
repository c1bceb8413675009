package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/analyzer"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [cookies.json]",
	Short: "Analyze a cookie export offline",
	Long: `Analyze cookies from a JSON export file.

The file holds either a bare array of cookie records or an object with a
"cookies" key, matching what browser cookie exporters produce:

  [
    {
      "name": "session_id",
      "domain": ".example.com",
      "path": "/",
      "secure": true,
      "httpOnly": false,
      "sameSite": "Lax",
      "expirationDate": 1748736000,
      "value": "abc123"
    }
  ]

Example:
  crumbs analyze cookies.json
  crumbs analyze cookies.json --site-host example.com --json
  crumbs analyze --demo
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeDemo   bool
	analyzeJSON   bool
	analyzeReport bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeDemo, "demo", false, "Analyze the built-in example cookies")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Emit the full batch report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeReport, "report", false, "Emit a plain-text report instead of the colored summary")
}

// cookieFile tolerates both a bare array and a {"cookies": [...]} wrapper.
type cookieFile struct {
	Cookies []map[string]interface{} `json:"cookies"`
	Context *cookie.Context          `json:"context,omitempty"`
}

func loadCookieFile(path string) ([]cookie.Cookie, *cookie.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var raw []map[string]interface{}
	var loginCtx *cookie.Context
	if err := json.Unmarshal(data, &raw); err != nil {
		var wrapped cookieFile
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, nil, fmt.Errorf("failed to parse cookie file: %w", err)
		}
		raw = wrapped.Cookies
		loginCtx = wrapped.Context
	}

	records := make([]cookie.Cookie, 0, len(raw))
	for _, m := range raw {
		records = append(records, cookie.FromMap(m))
	}
	return records, loginCtx, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var (
		records  []cookie.Cookie
		loginCtx *cookie.Context
		err      error
	)

	switch {
	case analyzeDemo:
		records = analyzer.DemoCookies()
	case len(args) == 1:
		records, loginCtx, err = loadCookieFile(args[0])
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("provide a cookies JSON file or use --demo")
	}

	if len(records) == 0 {
		return fmt.Errorf("no cookies to analyze")
	}

	a := analyzer.New(
		analyzer.WithWorkers(cfg.Analyzer.Workers),
		analyzer.WithSiteHost(cfg.Analyzer.SiteHost),
		analyzer.WithLogger(log.WithComponent("analyze")),
	)

	batch, err := a.AnalyzeBatch(cmd.Context(), records, loginCtx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	}

	if analyzeReport {
		fmt.Print(analyzer.RenderText(batch))
		return nil
	}

	displayBatch(batch)
	return nil
}

func displayBatch(batch *analyzer.BatchReport) {
	color.Cyan("\nAnalyzed %d cookies\n", batch.Stats.TotalCookies)
	fmt.Printf("  %s: %d  %s: %d  %s: %d  %s: %d  %s: %d\n\n",
		colorSeverityLabel("critical"), batch.Stats.Critical,
		colorSeverityLabel("high"), batch.Stats.High,
		colorSeverityLabel("medium"), batch.Stats.Medium,
		colorSeverityLabel("low"), batch.Stats.Low,
		colorSeverityLabel("info"), batch.Stats.Info,
	)

	for i, r := range batch.Results {
		fmt.Printf("%d. %s (%s)  %s  score %d/%d\n",
			i+1, color.New(color.Bold).Sprint(r.CookieName), r.CookieDomain,
			colorSeverity(r.Assessment.Severity),
			r.Assessment.Score, r.Assessment.MaxScore,
		)
		fmt.Printf("   Type: %s (%.0f%% confidence)\n",
			r.Classification.Type, r.Classification.Confidence*100)

		for _, issue := range r.Issues {
			fmt.Printf("   %s %s\n", colorSeverity(issue.Severity), issue.Title)
		}

		if r.Attacks.PathCount > 0 {
			fmt.Printf("   Attack paths: ")
			for j, p := range r.Attacks.Paths {
				if j > 0 {
					fmt.Print(", ")
				}
				fmt.Print(string(p.Type))
			}
			fmt.Printf(" (surface %d/100)\n", r.Attacks.AttackSurfaceScore)
		}

		fmt.Printf("   %s\n\n", r.Summary)
	}
}
