package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdaehl/PaperStream/internal/domain"
)

const scholarAlert = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Scholar Alert - new articles</title>
  <entry>
    <title>2 new articles</title>
    <link rel="alternate" href="https://scholar.google.com/alerts"/>
    <content type="html">&lt;h3&gt;&lt;a class="gse_alrt_title" href="https://scholar.google.com/scholar_url?url=https%3A%2F%2Farxiv.org%2Fabs%2F2301.12345&amp;amp;hl=en"&gt;Sparse Attention for Long Documents…&lt;/a&gt;&lt;/h3&gt;&lt;div style="color:#006621;line-height:18px"&gt;A Vaswani, N Shazeer - arXiv preprint, 2023&lt;/div&gt;&lt;h3&gt;&lt;a class="gse_alrt_title" href="https://www.nature.com/articles/s41586-021-03819-2"&gt;Highly accurate protein structure prediction&lt;/a&gt;&lt;/h3&gt;&lt;div style="color:#006621;line-height:18px"&gt;J Jumper, R Evans - Nature, 2021&lt;/div&gt;</content>
  </entry>
</feed>`

const plainFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Plain Notification Title</title>
    <link rel="alternate" href="https://ieeexplore.ieee.org/document/123456"/>
  </entry>
</feed>`

func TestParse(t *testing.T) {
	t.Run("unpacks scholar alert content", func(t *testing.T) {
		entries, err := Parse(strings.NewReader(scholarAlert))
		require.NoError(t, err)
		require.Len(t, entries, 2)

		first := entries[0]
		assert.Equal(t, "Sparse Attention for Long Documents…", first.RawTitle)
		assert.Equal(t, "https://arxiv.org/abs/2301.12345", first.RawLink, "redirector must be unwrapped")
		assert.Equal(t, "arxiv.org", first.SourceDomain)
		assert.Equal(t, []string{"A Vaswani", "N Shazeer"}, first.Authors)
		assert.Equal(t, domain.StatusUnresolved, first.Status)

		second := entries[1]
		assert.Equal(t, "Highly accurate protein structure prediction", second.RawTitle)
		assert.Equal(t, "https://www.nature.com/articles/s41586-021-03819-2", second.RawLink)
		assert.Equal(t, "nature.com", second.SourceDomain)
		assert.Equal(t, []string{"J Jumper", "R Evans"}, second.Authors)
	})

	t.Run("falls back to the notification title and link", func(t *testing.T) {
		entries, err := Parse(strings.NewReader(plainFeed))
		require.NoError(t, err)
		require.Len(t, entries, 1)

		assert.Equal(t, "Plain Notification Title", entries[0].RawTitle)
		assert.Equal(t, "https://ieeexplore.ieee.org/document/123456", entries[0].RawLink)
		assert.Equal(t, "ieee.org", entries[0].SourceDomain)
	})

	t.Run("rejects malformed XML", func(t *testing.T) {
		_, err := Parse(strings.NewReader("<feed><entry>"))
		assert.Error(t, err)
	})
}

func TestUnwrapLink(t *testing.T) {
	assert.Equal(t, "https://arxiv.org/abs/2301.12345",
		UnwrapLink("https://scholar.google.com/scholar_url?url=https%3A%2F%2Farxiv.org%2Fabs%2F2301.12345&hl=en"))
	assert.Equal(t, "https://www.nature.com/articles/s41586-021-03819-2",
		UnwrapLink("https://www.nature.com/articles/s41586-021-03819-2"))
	assert.Equal(t, "https://scholar.google.com/alerts",
		UnwrapLink("https://scholar.google.com/alerts"))
}

func TestSourceDomain(t *testing.T) {
	assert.Equal(t, "nature.com", SourceDomain("https://www.nature.com/articles/abc"))
	assert.Equal(t, "ieee.org", SourceDomain("https://ieeexplore.ieee.org/document/1"))
	assert.Equal(t, "arxiv.org", SourceDomain("https://arxiv.org/abs/2301.12345"))
	assert.Equal(t, "", SourceDomain("::not-a-url"))
}

func TestAppend(t *testing.T) {
	a := &domain.FeedEntry{RawTitle: "A", RawLink: "https://a.example/1"}
	b := &domain.FeedEntry{RawTitle: "B", RawLink: "https://a.example/2"}
	dup := &domain.FeedEntry{RawTitle: "A again", RawLink: "https://a.example/1"}

	entries := Append(nil, a)
	entries = Append(entries, dup, b)

	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].RawTitle, "first occurrence wins")
	assert.Equal(t, "B", entries[1].RawTitle)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xml"), []byte(plainFeed), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.atom"), []byte(scholarAlert), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	entries, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Files load in name order, so the alert entries come first.
	assert.Equal(t, "arxiv.org", entries[0].SourceDomain)
	assert.Equal(t, "Plain Notification Title", entries[2].RawTitle)
}
