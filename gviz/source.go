package gviz

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultEndpoint is the public JSON export of one spreadsheet tab.
const DefaultEndpoint = "https://docs.google.com/spreadsheets/d/{id}/gviz/tq?tqx=out:json&sheet={sheet}"

const (
	placeholderID    = "{id}"
	placeholderSheet = "{sheet}"
)

// Source is one named sheet and the URL it is fetched from.
type Source struct {
	Name string
	URL  string
}

// BuildSources expands endpoint for every sheet name. The endpoint must carry
// both {id} and {sheet} placeholders.
func BuildSources(endpoint, spreadsheetID string, sheetNames []string) ([]Source, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if err := ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	sources := make([]Source, 0, len(sheetNames))
	for _, name := range sheetNames {
		raw := strings.ReplaceAll(endpoint, placeholderID, url.PathEscape(spreadsheetID))
		raw = strings.ReplaceAll(raw, placeholderSheet, url.QueryEscape(name))
		if _, err := url.Parse(raw); err != nil {
			return nil, fmt.Errorf("invalid URL for sheet %s: %w", name, err)
		}
		sources = append(sources, Source{Name: name, URL: raw})
	}
	return sources, nil
}

// ValidateEndpoint checks that an endpoint template is an absolute http(s)
// URL with both placeholders.
func ValidateEndpoint(endpoint string) error {
	if !strings.Contains(endpoint, placeholderID) || !strings.Contains(endpoint, placeholderSheet) {
		return fmt.Errorf("endpoint %q must contain %s and %s", endpoint, placeholderID, placeholderSheet)
	}
	sample := strings.NewReplacer(placeholderID, "id", placeholderSheet, "sheet").Replace(endpoint)
	parsed, err := url.Parse(sample)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("endpoint %q is not an absolute http(s) URL", endpoint)
	}
	return nil
}
