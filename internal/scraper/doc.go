// Package scraper fetches and parses the didaktikzentrum.de seminar program.
//
// The scraper fetches the seminar listing page, extracts one record per
// listing row (status, date, title, location, certificate and area), and
// then fetches each seminar's detail page to extract a free-text
// description. Detail pages come in several layouts, so the description is
// located by an ordered chain of strategies where the first non-empty result
// wins. All requests of one run share a single HTTP session and are retried
// a bounded number of times on transport failures.
package scraper
