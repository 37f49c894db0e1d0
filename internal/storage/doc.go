// Package storage persists raw HTML responses for debugging.
//
// Each dumped page is written to the debug directory as
// debug_response_<suffix>_<timestamp>.html, where the suffix is derived from
// the page URL. The default location is ./debug.
package storage
