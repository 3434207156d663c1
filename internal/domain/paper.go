package domain

import (
	"strings"
	"time"
)

// Publisher identifies a publisher family served by one adapter package.
type Publisher string

// Publisher families known to the engine.
const (
	PublisherArXiv      Publisher = "arxiv"
	PublisherCVF        Publisher = "cvf"
	PublisherECVA       Publisher = "ecva"
	PublisherNeurIPS    Publisher = "neurips"
	PublisherPMLR       Publisher = "pmlr"
	PublisherOpenReview Publisher = "openreview"
	PublisherIEEE       Publisher = "ieee"
	PublisherElsevier   Publisher = "elsevier"
	PublisherSpringer   Publisher = "springer"
	PublisherNature     Publisher = "nature"

	// PublisherUnknown marks feed entries whose link matches no known
	// publisher signature. Such entries are never routed for completion.
	PublisherUnknown Publisher = ""
)

// CompletionStatus tracks how far a feed entry got through completion.
type CompletionStatus string

const (
	// StatusUnresolved means completion has not been attempted, or the
	// entry's publisher could not be classified.
	StatusUnresolved CompletionStatus = "unresolved"

	// StatusPartiallyCompleted means resolution filled some but not all
	// of the authors/abstract fields.
	StatusPartiallyCompleted CompletionStatus = "partial"

	// StatusFullyCompleted means both authors and abstract are populated.
	StatusFullyCompleted CompletionStatus = "completed"

	// StatusFailed means the publisher was recognized but every resolution
	// strategy came back empty.
	StatusFailed CompletionStatus = "failed"
)

// PaperRecord is the structured metadata of a single paper.
// A record is resolved once Title is non-empty; all other fields are
// best-effort and may stay empty when a source does not carry them.
type PaperRecord struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Abstract string   `json:"abstract"`
	URL      string   `json:"url"`
	Venue    string   `json:"venue,omitempty"`
	Year     int      `json:"year,omitempty"`
}

// Resolved returns true if the record carries the one mandatory field.
func (p *PaperRecord) Resolved() bool {
	return strings.TrimSpace(p.Title) != ""
}

// FirstAuthor returns the first author name, or "" if none are known.
func (p *PaperRecord) FirstAuthor() string {
	if len(p.Authors) == 0 {
		return ""
	}
	return p.Authors[0]
}

// Merge copies fields from other into p without overwriting any field
// that is already populated. Repeated merges never lose data.
func (p *PaperRecord) Merge(other *PaperRecord) {
	if other == nil {
		return
	}
	if p.Title == "" {
		p.Title = other.Title
	}
	if len(p.Authors) == 0 {
		p.Authors = other.Authors
	}
	if p.Abstract == "" {
		p.Abstract = other.Abstract
	}
	if p.URL == "" {
		p.URL = other.URL
	}
	if p.Venue == "" {
		p.Venue = other.Venue
	}
	if p.Year == 0 {
		p.Year = other.Year
	}
}

// FeedEntry is one abbreviated alert-feed entry. Entries are created from
// raw notifications, mutated in place by the completer, and only ever
// removed by the deduplicator.
type FeedEntry struct {
	// RawTitle and RawLink come straight from the alert notification.
	// RawLink is what publisher classification runs against.
	RawTitle string `json:"raw_title"`
	RawLink  string `json:"raw_link"`

	// SourceDomain is the registrable domain of RawLink (e.g. "arxiv.org"),
	// derived once at parse time.
	SourceDomain string `json:"source_domain,omitempty"`

	Status CompletionStatus `json:"status"`

	Title    string   `json:"title,omitempty"`
	Authors  []string `json:"authors,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Record views the entry's resolved fields as a PaperRecord, falling back
// to the raw title/link where nothing better is known yet.
func (e *FeedEntry) Record() PaperRecord {
	rec := PaperRecord{
		Title:    e.Title,
		Authors:  e.Authors,
		Abstract: e.Abstract,
		URL:      e.URL,
	}
	if rec.Title == "" {
		rec.Title = e.RawTitle
	}
	if rec.URL == "" {
		rec.URL = e.RawLink
	}
	return rec
}

// Apply merges a resolved record into the entry without erasing any
// pre-existing non-empty field.
func (e *FeedEntry) Apply(rec *PaperRecord) {
	if rec == nil {
		return
	}
	if e.Title == "" {
		e.Title = rec.Title
	}
	if len(e.Authors) == 0 {
		e.Authors = rec.Authors
	}
	if e.Abstract == "" {
		e.Abstract = rec.Abstract
	}
	if e.URL == "" {
		e.URL = rec.URL
	}
}

// Completed returns true if both best-effort detail fields are populated.
func (e *FeedEntry) Completed() bool {
	return len(e.Authors) > 0 && e.Abstract != ""
}

// AdapterDescriptor is the immutable per-adapter configuration fixed at
// construction time: identity, venue support window and throttling policy.
type AdapterDescriptor struct {
	// Publisher tags the adapter family the descriptor belongs to.
	Publisher Publisher

	// Name is the human-readable adapter name used in logs and errors.
	// Variants of one family carry distinct names (e.g. "ieee-api",
	// "ieee-scrape").
	Name string

	// Venues lists the venue tags the adapter can enumerate. Empty means
	// the adapter only supports detail lookups (feed completion).
	Venues []string

	// EarliestYear is the first year any venue of this family is
	// available. Individual venues may restrict further.
	EarliestYear int

	// RequiresKey marks adapters that cannot operate without credentials.
	RequiresKey bool

	// RequestBudget caps outgoing calls per run. Zero means unlimited.
	RequestBudget int

	// MinInterval is the minimum spacing between two outgoing calls.
	MinInterval time.Duration
}

// SupportsVenue returns true if the venue tag is listed in the descriptor.
// Matching is case-insensitive.
func (d AdapterDescriptor) SupportsVenue(venue string) bool {
	for _, v := range d.Venues {
		if strings.EqualFold(v, venue) {
			return true
		}
	}
	return false
}
