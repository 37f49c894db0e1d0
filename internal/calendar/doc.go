// Package calendar renders scraped seminars as an iCalendar (RFC 5545)
// feed. Each seminar whose listing date can be parsed becomes an all-day
// event; seminars with unparseable dates are left out.
package calendar
