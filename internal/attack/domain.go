// Package attack holds the ATT&CK domain model: domains with their valid
// platform sets, the Technique record, and the STIX client that fetches
// techniques from the MITRE CTI dataset.
package attack

import "fmt"

// Domain is one of the three ATT&CK matrices.
type Domain string

const (
	Enterprise Domain = "enterprise-attack"
	Mobile     Domain = "mobile-attack"
	ICS        Domain = "ics-attack"
)

// Domains lists all valid domains in canonical order.
var Domains = []Domain{Enterprise, Mobile, ICS}

// domainPlatforms maps each domain to its valid platforms, in the order the
// matrix presents them. The order is preserved when rendering filters.
var domainPlatforms = map[Domain][]string{
	Enterprise: {
		"Windows",
		"macOS",
		"Linux",
		"PRE",
		"Azure AD",
		"Office 365",
		"SaaS",
		"IaaS",
		"Google Workspace",
		"Network",
		"Containers",
	},
	Mobile: {
		"Android",
		"iOS",
	},
	ICS: {
		"Windows",
		"Control Server",
		"Data Historian",
		"Engineering Workstation",
		"Field Controller/RTU/PLC/IED",
		"Human-Machine Interface",
		"Input/Output Server",
		"Safety Instrumented System/Protection Relay",
		"None",
	},
}

// ParseDomain validates a domain string from the command line.
func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	if _, ok := domainPlatforms[d]; !ok {
		return "", fmt.Errorf("unknown domain %q (valid: enterprise-attack, mobile-attack, ics-attack)", s)
	}
	return d, nil
}

// Platforms returns the domain's full valid-platform list, in canonical
// order. The returned slice is a copy.
func (d Domain) Platforms() []string {
	src := domainPlatforms[d]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ValidatePlatforms checks every entry against the domain's valid platform
// set and fails on the first entry that does not belong, naming the platform
// and the domain. It must run before ComputePlatforms when the list comes
// from user input.
func ValidatePlatforms(d Domain, platforms []string) error {
	valid := make(map[string]bool, len(domainPlatforms[d]))
	for _, p := range domainPlatforms[d] {
		valid[p] = true
	}
	for _, p := range platforms {
		if !valid[p] {
			return fmt.Errorf("platform %q is not valid for domain %s", p, d)
		}
	}
	return nil
}

// ComputePlatforms resolves the active platform filter. An include list is
// taken as the exact set (deduplicated, order preserved); an exclude list
// yields the domain's platforms minus the excluded names; with neither, the
// domain's full set is returned. Include and exclude are mutually exclusive
// and enforced by the caller.
func ComputePlatforms(d Domain, include, exclude []string) []string {
	if len(include) > 0 {
		seen := make(map[string]bool, len(include))
		out := make([]string, 0, len(include))
		for _, p := range include {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
		return out
	}
	if len(exclude) > 0 {
		drop := make(map[string]bool, len(exclude))
		for _, p := range exclude {
			drop[p] = true
		}
		out := make([]string, 0, len(domainPlatforms[d]))
		for _, p := range domainPlatforms[d] {
			if !drop[p] {
				out = append(out, p)
			}
		}
		return out
	}
	return d.Platforms()
}

// Intersects reports whether any platform in a appears in b.
func Intersects(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, p := range b {
		set[p] = true
	}
	for _, p := range a {
		if set[p] {
			return true
		}
	}
	return false
}
