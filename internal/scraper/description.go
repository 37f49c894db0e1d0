package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/diz-scraper/internal/logger"
	"github.com/pfrederiksen/diz-scraper/internal/textutil"
	"golang.org/x/net/html/atom"
)

const (
	regularContainerSelector = "div.diz-event-details"
	addonContentSelector     = "div.sppb-addon-content"
	mainContentSelector      = "div#sp-component"

	// Heading text that starts the description on addon-content pages
	inhaltHeading = "Inhalt"
)

// Strategy extracts a cleaned description from a detail page, returning ""
// when the page does not have the layout it understands.
type Strategy struct {
	Name    string
	Extract func(doc *goquery.Selection) string
}

// DefaultStrategies are tried in order; the first non-empty result wins.
var DefaultStrategies = []Strategy{
	{Name: "regular", Extract: regularDescription},
	{Name: "neuberufene", Extract: neuberufeneDescription},
	{Name: "fallback", Extract: fallbackDescription},
}

// ExtractDescription runs DefaultStrategies over a detail page.
func ExtractDescription(doc *goquery.Document) (string, bool) {
	return extractWith(doc.Selection, DefaultStrategies)
}

// extractWith returns the first non-empty description produced by
// strategies. A panic during traversal yields no description.
func extractWith(doc *goquery.Selection, strategies []Strategy) (description string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Error extracting description", nil, fmt.Errorf("%v", r))
			description, ok = "", false
		}
	}()

	for _, strategy := range strategies {
		if d := strategy.Extract(doc); d != "" {
			logger.Debug("Found description", logger.Fields{"strategy": strategy.Name})
			logger.IncrCounter("description." + strategy.Name)
			return d, true
		}
	}

	logger.Debug("No description found in any structure", nil)
	logger.IncrCounter("description.none")
	return "", false
}

// regularDescription reads the second div nested in the event details
// container.
func regularDescription(doc *goquery.Selection) string {
	container := doc.Find(regularContainerSelector).First()
	if container.Length() == 0 {
		return ""
	}

	divs := container.Find("div")
	if divs.Length() < 2 {
		return ""
	}

	text := textutil.Clean(divs.Eq(1).Text())
	if text == "" {
		return ""
	}
	return textutil.CleanDescription(text)
}

// neuberufeneDescription collects the paragraphs between an "Inhalt" heading
// and the next h4, trying each addon content block in turn.
func neuberufeneDescription(doc *goquery.Selection) string {
	var description string
	doc.Find(addonContentSelector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		description = inhaltParagraphs(block)
		return description == ""
	})
	return description
}

func inhaltParagraphs(block *goquery.Selection) string {
	heading := block.Find("h4").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return h.Text() == inhaltHeading
	}).First()
	if heading.Length() == 0 {
		return ""
	}

	var parts []string
	for el := range following(heading.Get(0)) {
		if el.DataAtom == atom.H4 {
			break
		}
		if el.DataAtom != atom.P {
			continue
		}
		if text := textutil.Clean(nodeText(el)); text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return textutil.CleanDescription(strings.Join(parts, " "))
}

// fallbackDescription uses the whole main content area.
func fallbackDescription(doc *goquery.Selection) string {
	main := doc.Find(mainContentSelector).First()
	if main.Length() == 0 {
		return ""
	}

	text := textutil.Clean(main.Text())
	if text == "" {
		return ""
	}
	return textutil.CleanDescription(text)
}
