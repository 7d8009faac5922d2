package viewmodel

// OpenGraph feeds the meta tags on publicly shareable pages.
type OpenGraph struct {
	Title       string
	Description string
	URL         string
	SiteName    string
}
