// Package export writes retrieved records to files in the supported
// output formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mdaehl/PaperStream/internal/config"
	"github.com/mdaehl/PaperStream/internal/domain"
)

// csvHeader is the column layout of CSV exports.
var csvHeader = []string{"title", "authors", "abstract", "url", "venue", "year"}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []*domain.PaperRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if records == nil {
		records = []*domain.PaperRecord{}
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding JSON export: %w", err)
	}
	return nil
}

// WriteCSV writes records as comma-separated values with a header row.
// Author lists are joined with "; ".
func WriteCSV(w io.Writer, records []*domain.PaperRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, rec := range records {
		year := ""
		if rec.Year != 0 {
			year = strconv.Itoa(rec.Year)
		}
		row := []string{
			rec.Title,
			strings.Join(rec.Authors, "; "),
			rec.Abstract,
			rec.URL,
			rec.Venue,
			year,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV export: %w", err)
	}
	return nil
}

// atomFeed is the Atom envelope of a feed export.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	Updated string      `xml:"updated"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string       `xml:"title"`
	Links   []atomLink   `xml:"link"`
	Authors []atomAuthor `xml:"author"`
	Summary string       `xml:"summary,omitempty"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// WriteAtom writes records as an Atom feed with one entry per record.
func WriteAtom(w io.Writer, title string, records []*domain.PaperRecord) error {
	feed := atomFeed{
		Xmlns:   "http://www.w3.org/2005/Atom",
		Title:   title,
		Updated: time.Now().UTC().Format(time.RFC3339),
		Entries: make([]atomEntry, 0, len(records)),
	}
	for _, rec := range records {
		entry := atomEntry{
			Title:   rec.Title,
			Summary: rec.Abstract,
		}
		if rec.URL != "" {
			entry.Links = append(entry.Links, atomLink{Rel: "alternate", Href: rec.URL})
		}
		for _, author := range rec.Authors {
			entry.Authors = append(entry.Authors, atomAuthor{Name: author})
		}
		feed.Entries = append(feed.Entries, entry)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing Atom header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return fmt.Errorf("encoding Atom export: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("writing Atom export: %w", err)
	}
	return nil
}

// Write writes records in the given format.
func Write(w io.Writer, format, title string, records []*domain.PaperRecord) error {
	switch strings.ToLower(format) {
	case config.FormatJSON:
		return WriteJSON(w, records)
	case config.FormatCSV:
		return WriteCSV(w, records)
	case config.FormatAtom:
		return WriteAtom(w, title, records)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// Filename derives the default export file name for a venue edition.
func Filename(venue string, year int, format string) string {
	return fmt.Sprintf("%s_%d.%s", strings.ToLower(venue), year, strings.ToLower(format))
}

// WriteFile writes records to a file in the output directory, creating
// the directory if needed, and returns the written path.
func WriteFile(dir, name, format string, records []*domain.PaperRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	title := strings.TrimSuffix(name, filepath.Ext(name))
	if err := Write(f, format, title, records); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}
