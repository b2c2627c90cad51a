package suite

import (
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"
)

func normalizeHost(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}

func registrable(host string) (string, error) {
	reg, err := publicsuffix.EffectiveTLDPlusOne(normalizeHost(host))
	if err != nil {
		return "", fmt.Errorf("could not compute registrable domain: %w", err)
	}

	return reg, nil
}

// brandLabel returns the label left of the public suffix ("steamcommunity"
// for "steamcommunity.com").
func brandLabel(domain string) string {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	label := strings.TrimSuffix(strings.TrimSuffix(domain, suffix), ".")
	if i := strings.LastIndexByte(label, '.'); i >= 0 {
		label = label[i+1:]
	}

	return label
}

// matchesDomain reports whether host equals or is a subdomain of any entry.
func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		d = normalizeHost(d)
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}

	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it = normalizeHost(it); it != "" {
			set[it] = struct{}{}
		}
	}

	return set
}

// levenshtein is the classic two-row edit distance over bytes.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
