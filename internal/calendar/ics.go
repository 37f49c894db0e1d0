package calendar

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/diz-scraper/internal/seminar"
)

const (
	prodID    = "-//diz-scraper//seminars//EN"
	uidDomain = "didaktikzentrum.de"

	// maxLineOctets is the RFC 5545 content line limit before folding
	maxLineOctets = 75
)

// EventID returns a deterministic identifier for a seminar
func EventID(s *seminar.Seminar) string {
	h := sha1.New()
	h.Write([]byte(s.DetailURL + "|" + s.Date + "|" + s.Title))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// GenerateICS renders seminars as a calendar. now is used as DTSTAMP. The
// second return value is the number of events written.
func GenerateICS(seminars []*seminar.Seminar, now time.Time) (string, int) {
	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:"+prodID)
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")

	count := 0
	for _, s := range seminars {
		date := ParseDate(s.Date)
		if date.IsZero() {
			continue
		}
		writeEvent(&ics, s, date, now)
		count++
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String(), count
}

func writeEvent(ics *strings.Builder, s *seminar.Seminar, date, now time.Time) {
	writeLine(ics, "BEGIN:VEVENT")
	writeLine(ics, fmt.Sprintf("UID:%s@%s", EventID(s), uidDomain))
	writeLine(ics, "DTSTAMP:"+formatICSTime(now))
	writeLine(ics, "DTSTART;VALUE=DATE:"+date.Format("20060102"))
	writeLine(ics, "DTEND;VALUE=DATE:"+date.AddDate(0, 0, 1).Format("20060102"))
	writeLine(ics, "SUMMARY:"+escapeICS(s.Title))

	var description []string
	if s.Status != "" {
		description = append(description, "Status: "+s.Status)
	}
	if s.Certificate != "" {
		description = append(description, "Zertifikat: "+s.Certificate)
	}
	if s.Area != "" {
		description = append(description, "Bereich: "+s.Area)
	}
	if s.Description != "" {
		description = append(description, "", s.Description)
	}
	if len(description) > 0 {
		writeLine(ics, "DESCRIPTION:"+escapeICS(strings.Join(description, "\n")))
	}

	if s.Location != "" {
		writeLine(ics, "LOCATION:"+escapeICS(s.Location))
	}
	if s.DetailURL != "" {
		writeLine(ics, "URL:"+s.DetailURL)
	}
	writeLine(ics, "TRANSP:TRANSPARENT")
	writeLine(ics, "END:VEVENT")
}

// writeLine writes a content line, folding it at maxLineOctets without
// splitting UTF-8 sequences
func writeLine(ics *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			// no rune boundary in reach, fold at the octet limit
			cut = limit
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines start with a space
		limit = maxLineOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar text values
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
