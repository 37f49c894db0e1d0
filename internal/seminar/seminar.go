package seminar

// UnknownStatus is used when a listing row carries no status icon.
const UnknownStatus = "Unknown"

// Columns is the fixed column order of every exported file.
var Columns = []string{
	"status",
	"date",
	"title",
	"location",
	"certificate",
	"area",
	"detail_url",
	"description",
	"debug_file",
}

// Seminar represents one row of the seminar listing
type Seminar struct {
	Status      string `json:"status"`
	Date        string `json:"date"` // As displayed on the site, not parsed
	Title       string `json:"title"`
	Location    string `json:"location"`
	Certificate string `json:"certificate"`
	Area        string `json:"area"`
	DetailURL   string `json:"detail_url"`
	Description string `json:"description"`
	DebugFile   string `json:"debug_file"`
}

// CertificateInfo is the certificate cell split into its two parts
type CertificateInfo struct {
	Certificate string
	Area        string
}

// Details is the result of fetching a seminar detail page
type Details struct {
	Description string
	DebugFile   string
}

// New creates a Seminar from the listing fields
func New(status, date, title, location string, cert CertificateInfo, detailURL string) *Seminar {
	return &Seminar{
		Status:      status,
		Date:        date,
		Title:       title,
		Location:    location,
		Certificate: cert.Certificate,
		Area:        cert.Area,
		DetailURL:   detailURL,
	}
}

// ApplyDetails merges the detail page result into the seminar
func (s *Seminar) ApplyDetails(d Details) {
	s.Description = d.Description
	s.DebugFile = d.DebugFile
}

// HasDescription reports whether a description was extracted
func (s *Seminar) HasDescription() bool {
	return s.Description != ""
}

// Row returns the field values in Columns order
func (s *Seminar) Row() []string {
	return []string{
		s.Status,
		s.Date,
		s.Title,
		s.Location,
		s.Certificate,
		s.Area,
		s.DetailURL,
		s.Description,
		s.DebugFile,
	}
}

// FromRow builds a Seminar from values in Columns order. Missing trailing
// values are left empty.
func FromRow(row []string) *Seminar {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return &Seminar{
		Status:      get(0),
		Date:        get(1),
		Title:       get(2),
		Location:    get(3),
		Certificate: get(4),
		Area:        get(5),
		DetailURL:   get(6),
		Description: get(7),
		DebugFile:   get(8),
	}
}
