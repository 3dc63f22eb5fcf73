package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://example.go.th/webmax/content/energy-statistics"

func TestExtractLinksScopedBySelector(t *testing.T) {
	t.Parallel()

	html := `
<html><body>
  <nav><a href="/home">Home</a></nav>
  <div class="content-detail">
    <ul>
      <li>สถิติพลังงาน ปี 2567 <a href="/dl/energy_2567.xlsx">ดาวน์โหลด</a></li>
      <li>Annual report <a href="https://files.example.go.th/energy_2566.xlsx">2566</a></li>
    </ul>
  </div>
</body></html>`

	records, err := ExtractLinks(html, pageURL, ".content-detail")
	require.NoError(t, err)
	require.Len(t, records, 2, "links outside the selector are ignored")

	assert.Equal(t, "https://example.go.th/dl/energy_2567.xlsx", records[0].Href)
	assert.Equal(t, "ดาวน์โหลด", records[0].Text)
	assert.Equal(t, "สถิติพลังงาน ปี 2567 ดาวน์โหลด", records[0].NeighborText)

	assert.Equal(t, "https://files.example.go.th/energy_2566.xlsx", records[1].Href)
	assert.Equal(t, "Annual report 2566", records[1].NeighborText)
}

func TestExtractLinksSelectorFallback(t *testing.T) {
	t.Parallel()

	html := `<html><body><p><a href="/dl/a.xlsx">report</a></p></body></html>`

	records, err := ExtractLinks(html, pageURL, "#no-such-element")
	require.NoError(t, err)
	require.Len(t, records, 1, "a missing selector falls back to the whole document")
	assert.Equal(t, "https://example.go.th/dl/a.xlsx", records[0].Href)
}

func TestExtractLinksSkipsAndDeduplicates(t *testing.T) {
	t.Parallel()

	html := `
<html><body>
  <a href="#top">top</a>
  <a href="javascript:void(0)">noop</a>
  <a href="mailto:info@example.go.th">contact</a>
  <a href="/dl/a.xlsx">first</a>
  <a href="/dl/a.xlsx">duplicate</a>
  <a href="/dl/a.xlsx#sheet2">fragment duplicate</a>
</body></html>`

	records, err := ExtractLinks(html, pageURL, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://example.go.th/dl/a.xlsx", records[0].Href)
	assert.Equal(t, "first", records[0].Text)
}

func TestExtractLinksCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	html := `<div><a href="/dl/a.xlsx">  Energy
		statistics   2567 </a></div>`

	records, err := ExtractLinks(html, pageURL, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Energy statistics 2567", records[0].Text)
}
