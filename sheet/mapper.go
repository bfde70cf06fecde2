package sheet

import (
	"fmt"

	"sheetfolio/portfolio"
)

// Result is the outcome of decoding one sheet. Err is set when the value is
// the kind's empty value because the body was missing or malformed.
type Result struct {
	Kind         Kind
	Profile      portfolio.Profile
	SocialLinks  []portfolio.SocialLink
	Items        []portfolio.Item
	Achievements []portfolio.Achievement

	// Rows is the number of table rows read; Missing lists expected labels
	// absent from the table header.
	Rows    int
	Missing []string
	Err     error
}

// Records returns how many records survived decoding.
func (r Result) Records() int {
	switch r.Kind {
	case KindProfile:
		if r.Profile == (portfolio.Profile{}) {
			return 0
		}
		return 1
	case KindSocialLinks:
		return len(r.SocialLinks)
	case KindPortfolio:
		return len(r.Items)
	case KindAchievements:
		return len(r.Achievements)
	default:
		return 0
	}
}

// ApplyTo stores the decoded value into its slot of page.
func (r Result) ApplyTo(page *portfolio.Page) {
	switch r.Kind {
	case KindProfile:
		page.Profile = r.Profile
	case KindSocialLinks:
		page.SocialLinks = r.SocialLinks
	case KindPortfolio:
		page.Items = r.Items
	case KindAchievements:
		page.Achievements = r.Achievements
	}
}

// Decode turns one raw export body into the records of kind. It never panics:
// any failure yields the kind's empty value with Err set.
func Decode(kind Kind, raw string, ok bool) Result {
	table, err := DecodeTable(raw, ok)
	if err != nil {
		result := emptyResult(kind)
		result.Err = fmt.Errorf("decode %s: %w", kind, err)
		return result
	}
	return MapTable(kind, table)
}

func DecodeProfile(raw string, ok bool) portfolio.Profile {
	return Decode(KindProfile, raw, ok).Profile
}

func DecodeSocialLinks(raw string, ok bool) []portfolio.SocialLink {
	return Decode(KindSocialLinks, raw, ok).SocialLinks
}

func DecodePortfolio(raw string, ok bool) []portfolio.Item {
	return Decode(KindPortfolio, raw, ok).Items
}

func DecodeAchievements(raw string, ok bool) []portfolio.Achievement {
	return Decode(KindAchievements, raw, ok).Achievements
}

// MapTable maps an already parsed table into the records of kind.
func MapTable(kind Kind, table Table) (result Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = emptyResult(kind)
			result.Err = fmt.Errorf("map %s: %v", kind, recovered)
		}
	}()

	b := bind(table)
	result = emptyResult(kind)
	result.Rows = len(table.Rows)
	result.Missing = missingLabels(kind, b)

	switch kind {
	case KindProfile:
		result.Profile = mapProfile(b)
	case KindSocialLinks:
		result.SocialLinks = mapSocialLinks(b)
	case KindPortfolio:
		result.Items = mapItems(b)
	case KindAchievements:
		result.Achievements = mapAchievements(b)
	default:
		result.Err = fmt.Errorf("unsupported kind: %s", kind)
	}
	return result
}

func emptyResult(kind Kind) Result {
	return Result{
		Kind:         kind,
		SocialLinks:  []portfolio.SocialLink{},
		Items:        []portfolio.Item{},
		Achievements: []portfolio.Achievement{},
	}
}

var kindColumns = map[Kind][]column{
	KindProfile:      {colName, colDescription},
	KindSocialLinks:  {colPlatform, colURL},
	KindPortfolio:    {colTitle, colDescription, colImageURL, colProjectURL},
	KindAchievements: {colTitle, colDescription, colDate},
}

func missingLabels(kind Kind, b binding) []string {
	var missing []string
	for _, col := range kindColumns[kind] {
		if !b.has(col) {
			missing = append(missing, columnLabels[col])
		}
	}
	return missing
}

// Only the first row carries the profile.
func mapProfile(b binding) portfolio.Profile {
	if len(b.table.Rows) == 0 {
		return portfolio.Profile{}
	}
	return portfolio.Profile{
		Name:        b.value(0, colName),
		Description: b.value(0, colDescription),
	}
}

func mapSocialLinks(b binding) []portfolio.SocialLink {
	out := make([]portfolio.SocialLink, 0, len(b.table.Rows))
	for row := range b.table.Rows {
		link := portfolio.SocialLink{
			Platform: b.value(row, colPlatform),
			URL:      b.value(row, colURL),
		}
		if link.Platform == "" || link.URL == "" {
			continue
		}
		out = append(out, link)
	}
	return out
}

// Title always has a default, so only an empty description drops a row.
func mapItems(b binding) []portfolio.Item {
	out := make([]portfolio.Item, 0, len(b.table.Rows))
	for row := range b.table.Rows {
		item := portfolio.Item{
			Title:       b.valueOr(row, colTitle, portfolio.UntitledProject),
			Description: b.value(row, colDescription),
			ImageURL:    b.valueOr(row, colImageURL, portfolio.PlaceholderImageURL),
			ProjectURL:  b.value(row, colProjectURL),
		}
		if item.Title == "" || item.Description == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func mapAchievements(b binding) []portfolio.Achievement {
	out := make([]portfolio.Achievement, 0, len(b.table.Rows))
	for row := range b.table.Rows {
		achievement := portfolio.Achievement{
			Title:       b.valueOr(row, colTitle, portfolio.UntitledAchievement),
			Description: b.value(row, colDescription),
		}
		if achievement.Title == "" || achievement.Description == "" {
			continue
		}
		if date, ok := ParseDate(b.value(row, colDate)); ok {
			achievement.Date = date
		}
		out = append(out, achievement)
	}
	return out
}
