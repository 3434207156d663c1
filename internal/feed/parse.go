// Package feed parses alert feeds into entries and completes them
// through publisher resolution chains.
//
// Alert entries are abbreviated: a possibly truncated title, a link
// that often points through a redirector, and at best a byline. The
// parser extracts what is there; the completer fills the rest.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mdaehl/PaperStream/internal/domain"
)

// bylineSelector matches the green author line of Scholar alert HTML.
const bylineSelector = `div[style*="color:#006621"]`

// atomFeed is the envelope of an alert feed file.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

// atomEntry is one notification in an alert feed.
type atomEntry struct {
	Title   string     `xml:"title"`
	Content string     `xml:"content"`
	Links   []atomLink `xml:"link"`
}

// atomLink is a single link element of an entry.
type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// Parse reads an alert feed and returns its entries in document order.
//
// Scholar alerts pack several papers into the HTML content of one
// notification; each titled anchor becomes its own entry. Plain feeds
// without embedded HTML fall back to the notification title and link.
func Parse(r io.Reader) ([]*domain.FeedEntry, error) {
	var parsed atomFeed
	if err := xml.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding alert feed: %w", err)
	}

	var entries []*domain.FeedEntry
	for _, entry := range parsed.Entries {
		embedded, err := parseEmbedded(entry.Content)
		if err != nil {
			return nil, err
		}
		if len(embedded) > 0 {
			entries = append(entries, embedded...)
			continue
		}
		link := UnwrapLink(entryLink(entry))
		entries = append(entries, &domain.FeedEntry{
			RawTitle:     strings.TrimSpace(entry.Title),
			RawLink:      link,
			SourceDomain: SourceDomain(link),
			Status:       domain.StatusUnresolved,
		})
	}
	return entries, nil
}

// parseEmbedded extracts the papers packed into Scholar alert HTML.
func parseEmbedded(content string) ([]*domain.FeedEntry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing alert content: %w", err)
	}

	var entries []*domain.FeedEntry
	doc.Find("a.gse_alrt_title").Each(func(_ int, sel *goquery.Selection) {
		link := UnwrapLink(sel.AttrOr("href", ""))
		entry := &domain.FeedEntry{
			RawTitle:     strings.TrimSpace(sel.Text()),
			RawLink:      link,
			SourceDomain: SourceDomain(link),
			Status:       domain.StatusUnresolved,
			Authors:      parseByline(findByline(sel)),
		}
		entries = append(entries, entry)
	})
	return entries, nil
}

// findByline locates the author line that follows a title anchor. The
// anchor usually sits inside a heading with the byline div after it.
func findByline(anchor *goquery.Selection) string {
	if byline := anchor.NextAllFiltered(bylineSelector).First(); byline.Length() > 0 {
		return byline.Text()
	}
	if byline := anchor.Parent().NextAllFiltered(bylineSelector).First(); byline.Length() > 0 {
		return byline.Text()
	}
	return ""
}

// parseByline splits "A Author, B Author - Venue, Year" into author
// names. Everything after the first " - " is venue noise.
func parseByline(raw string) []string {
	names, _, _ := strings.Cut(raw, " - ")
	parts := strings.Split(names, ",")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) == 0 {
		return nil
	}
	return authors
}

// entryLink picks the best link of a notification, preferring the
// alternate relation.
func entryLink(entry atomEntry) string {
	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Href != "" {
			return link.Href
		}
	}
	for _, link := range entry.Links {
		if link.Href != "" {
			return link.Href
		}
	}
	return ""
}

// UnwrapLink resolves a Scholar redirector link to the target URL.
// Non-redirector links pass through unchanged.
func UnwrapLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if !strings.Contains(u.Host, "scholar.google") {
		return link
	}
	if target := u.Query().Get("url"); target != "" {
		return target
	}
	return link
}

// SourceDomain returns the registrable domain of a link, i.e. the last
// two labels of its host ("www.nature.com" yields "nature.com").
func SourceDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// ParseFile parses a single alert feed file.
func ParseFile(path string) ([]*domain.FeedEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening alert feed: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// LoadDir parses every .xml and .atom file of a directory in name
// order and appends their entries.
func LoadDir(dir string) ([]*domain.FeedEntry, error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading feed directory: %w", err)
	}

	var paths []string
	for _, entry := range names {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".xml", ".atom":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	var entries []*domain.FeedEntry
	for _, path := range paths {
		parsed, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		entries = Append(entries, parsed...)
	}
	return entries, nil
}

// Append adds entries whose link is not already present, preserving
// the order of both the existing list and the additions.
func Append(entries []*domain.FeedEntry, additions ...*domain.FeedEntry) []*domain.FeedEntry {
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.RawLink != "" {
			seen[entry.RawLink] = struct{}{}
		}
	}
	for _, add := range additions {
		if add.RawLink != "" {
			if _, ok := seen[add.RawLink]; ok {
				continue
			}
			seen[add.RawLink] = struct{}{}
		}
		entries = append(entries, add)
	}
	return entries
}
