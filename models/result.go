package models

// ResultRow is one line of the Tosshin report, created at extraction
// time and immutable afterwards. Rows are appended to the workbook in
// keyword-processing order.
type ResultRow struct {
	Keyword string
	Maker   string
	Weight  string
	Price   string
	URL     string
}

// OEMFields are the columns read from the first row of the OEM results
// table on a Tosshin search page.
type OEMFields struct {
	Maker  string
	Weight string
	Price  string
}

// LookupResult is everything a single keyword lookup produced.
type LookupResult struct {
	// Fields is nil when the page showed the nothing-found marker or
	// the result table could not be read.
	Fields *OEMFields

	// Screenshot is the rendered page as PNG bytes.
	Screenshot []byte

	// FinalURL is the page URL after navigation (redirects followed).
	FinalURL string
}
