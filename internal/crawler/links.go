package crawler

import (
	"net/url"
	"strings"
)

// LinkFilter normalizes raw anchor hrefs against a page's canonical URL and
// rejects links the crawler must not follow.
type LinkFilter struct {
	disallowedExtensions []string
}

// NewLinkFilter builds a filter rejecting URLs that end with any of the
// given extensions (matched case-insensitively against the full URL).
func NewLinkFilter(disallowedExtensions []string) *LinkFilter {
	return &LinkFilter{disallowedExtensions: disallowedExtensions}
}

// Normalize resolves each href against base and returns the surviving
// outbound links, deduplicated in first-seen order, plus the number of links
// skipped. Fragment-only hrefs are dropped silently; links with a disallowed
// extension or a scheme other than http/https count as skipped.
func (f *LinkFilter) Normalize(base *url.URL, hrefs []string) (links []string, skipped int) {
	seen := make(map[string]bool, len(hrefs))
	for _, href := range hrefs {
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			skipped++
			continue
		}
		resolved := base.ResolveReference(ref)
		full := resolved.String()

		if f.hasDisallowedExtension(full) {
			skipped++
			continue
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			skipped++
			continue
		}
		if seen[full] {
			continue
		}
		seen[full] = true
		links = append(links, full)
	}
	return links, skipped
}

func (f *LinkFilter) hasDisallowedExtension(fullURL string) bool {
	lowered := strings.ToLower(fullURL)
	for _, ext := range f.disallowedExtensions {
		if strings.HasSuffix(lowered, ext) {
			return true
		}
	}
	return false
}
