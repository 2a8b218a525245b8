// Package label extracts router, site, and kit tokens from free-text device
// nicknames and directory names using one fixed grammar.
//
// The grammar, applied uniformly to every text source:
//
//   - router code: the SK marker followed by letters then digits, e.g.
//     "EDGE-SKR12" -> "R12"
//   - site code: a trailing run of 4-8 letters, e.g. "KIT7-SKR12-SITEA"
//     -> "SITEA"
//   - kit code: KIT followed by digits, e.g. "KIT7-SKR12-SITEA" -> "KIT7"
//
// All extracted codes are uppercased. A non-matching input yields the empty
// string, never an error.
package label

import (
	"regexp"
	"strings"
)

var (
	routerPattern     = regexp.MustCompile(`(?i)SK([A-Z]+[0-9]+)`)
	bareRouterPattern = regexp.MustCompile(`(?i)^[A-Z]+[0-9]+$`)
	sitePattern       = regexp.MustCompile(`(?i)([A-Z]{4,8})$`)
	kitPattern        = regexp.MustCompile(`(?i)KIT[0-9]+`)
)

// mobileMarker excludes portable units from reconciliation entirely.
const mobileMarker = "mobile"

// RouterCode extracts the router code from text, or "" if absent. Text that
// is already a bare router code (letters then digits, nothing else) is
// returned as-is uppercased, so extraction is idempotent.
func RouterCode(text string) string {
	if m := routerPattern.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	trimmed := strings.TrimSpace(text)
	if bareRouterPattern.MatchString(trimmed) {
		return strings.ToUpper(trimmed)
	}
	return ""
}

// SiteCode extracts the site code from text, or "" if absent.
func SiteCode(text string) string {
	m := sitePattern.FindStringSubmatch(strings.TrimRight(text, " \t"))
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// KitCode extracts the kit code from text, or "" if absent.
func KitCode(text string) string {
	m := kitPattern.FindString(text)
	return strings.ToUpper(m)
}

// IsMobile reports whether the nickname marks a mobile unit. Mobile units are
// filtered upstream of all reconciliation components.
func IsMobile(nickname string) bool {
	return strings.Contains(strings.ToLower(nickname), mobileMarker)
}
