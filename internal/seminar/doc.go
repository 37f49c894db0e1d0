// Package seminar defines the record types produced by a scrape run.
//
// A Seminar is built once per listing row, optionally enriched with the
// description and debug file of its detail page, and then handed to the
// exporters. Every field is a plain string; an absent value is the empty
// string, never nil.
package seminar
