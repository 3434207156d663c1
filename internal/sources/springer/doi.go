package springer

import (
	"net/url"
	"strings"
)

// natureDOIPrefix is the registrant prefix of all Nature articles.
const natureDOIPrefix = "10.1038"

// ExtractDOI derives the DOI from a SpringerLink article or chapter URL,
// where it spans the last two path segments.
func ExtractDOI(paperURL string) string {
	segments := pathSegments(paperURL)
	if len(segments) < 2 {
		return ""
	}
	prefix := segments[len(segments)-2]
	if !strings.HasPrefix(prefix, "10.") {
		return ""
	}
	return prefix + "/" + segments[len(segments)-1]
}

// ExtractNatureDOI derives the DOI from a nature.com article URL, which
// only carries the suffix; the registrant prefix is fixed.
func ExtractNatureDOI(paperURL string) string {
	segments := pathSegments(paperURL)
	if len(segments) == 0 {
		return ""
	}
	return natureDOIPrefix + "/" + segments[len(segments)-1]
}

// pathSegments splits the URL path, dropping fragments, query params and
// a trailing .pdf suffix.
func pathSegments(paperURL string) []string {
	u, err := url.Parse(paperURL)
	if err != nil {
		return nil
	}
	path := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".pdf")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
