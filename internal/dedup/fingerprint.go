package dedup

import (
	"github.com/mdaehl/PaperStream/internal/domain"
)

// Fingerprint derives a duplicate detection key from a record: the
// normalized title joined with the normalized first author. Records
// without a usable title fingerprint to the empty string and are never
// considered duplicates of each other.
func Fingerprint(rec *domain.PaperRecord) string {
	title := NormalizeTitle(rec.Title)
	if title == "" {
		return ""
	}
	return title + "|" + NormalizeName(rec.FirstAuthor())
}

// DedupeRecords removes duplicate records, keeping the first occurrence
// of each fingerprint. The input order is preserved and the input slice
// is not modified. Applying it twice yields the same result.
func DedupeRecords(records []*domain.PaperRecord) []*domain.PaperRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]*domain.PaperRecord, 0, len(records))

	for _, rec := range records {
		fp := Fingerprint(rec)
		if fp != "" {
			if _, ok := seen[fp]; ok {
				continue
			}
			seen[fp] = struct{}{}
		}
		out = append(out, rec)
	}
	return out
}

// DedupeEntries removes duplicate feed entries by the fingerprint of
// their effective record, keeping the first occurrence.
func DedupeEntries(entries []*domain.FeedEntry) []*domain.FeedEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]*domain.FeedEntry, 0, len(entries))

	for _, entry := range entries {
		rec := entry.Record()
		fp := Fingerprint(&rec)
		if fp != "" {
			if _, ok := seen[fp]; ok {
				continue
			}
			seen[fp] = struct{}{}
		}
		out = append(out, entry)
	}
	return out
}
