package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/diz-scraper/internal/seminar"
	"github.com/pfrederiksen/diz-scraper/internal/textutil"
)

const (
	rowSelector         = `tr[itemtype="http://schema.org/Event"]`
	statusSelector      = "img.hasTip"
	dateSelector        = "td.re_startdate"
	titleSelector       = "td.re_title"
	locationSelector    = "td.re_location"
	certificateSelector = `td[class="d-md-none d-none d-lg-table-cell"]`

	areaDelimiter = "Bereich:"
)

// extractStatus returns the status icon's title.
func extractStatus(row *goquery.Selection) string {
	if title, ok := row.Find(statusSelector).First().Attr("title"); ok {
		return title
	}
	return seminar.UnknownStatus
}

func extractDate(row *goquery.Selection) string {
	return cellText(row, dateSelector)
}

func extractLocation(row *goquery.Selection) string {
	return cellText(row, locationSelector)
}

func cellText(row *goquery.Selection, selector string) string {
	cell := row.Find(selector).First()
	if cell.Length() == 0 {
		return ""
	}
	return textutil.Clean(cell.Text())
}

// extractTitleAndURL reads the title link. Relative links are made absolute
// against baseURL.
func extractTitleAndURL(row *goquery.Selection, baseURL string) (string, string) {
	link := row.Find(titleSelector).First().Find("a").First()
	if link.Length() == 0 {
		return "", ""
	}

	title := textutil.Clean(link.Text())
	href := link.AttrOr("href", "")
	if href != "" && !strings.HasPrefix(href, "http") {
		href = baseURL + href
	}
	return title, href
}

// extractCertificateInfo splits the certificate cell at "Bereich:". The area
// is the second split element only, even if the delimiter repeats.
func extractCertificateInfo(cell *goquery.Selection) seminar.CertificateInfo {
	if cell == nil || cell.Length() == 0 {
		return seminar.CertificateInfo{}
	}

	parts := strings.Split(cell.Text(), areaDelimiter)
	info := seminar.CertificateInfo{
		Certificate: textutil.Clean(parts[0]),
	}
	if len(parts) > 1 {
		info.Area = textutil.Clean(parts[1])
	}
	return info
}

// parseRow builds the base record of one listing row.
func parseRow(row *goquery.Selection, baseURL string) *seminar.Seminar {
	title, detailURL := extractTitleAndURL(row, baseURL)
	return seminar.New(
		extractStatus(row),
		extractDate(row),
		title,
		extractLocation(row),
		extractCertificateInfo(row.Find(certificateSelector).First()),
		detailURL,
	)
}

// parseListing returns the base records of all listing rows in document order.
func parseListing(doc *goquery.Selection, baseURL string) []*seminar.Seminar {
	rows := doc.Find(rowSelector)
	seminars := make([]*seminar.Seminar, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		seminars = append(seminars, parseRow(row, baseURL))
	})
	return seminars
}
