// Package export writes scraped seminars to tabular files.
//
// CSV files are UTF-8 with a byte order mark so spreadsheet applications
// detect the encoding, quote every field, and always start with a header
// row. XLSX files carry the same columns on a single sheet. ICS files hold
// one all-day event per dated seminar.
package export
