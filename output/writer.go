package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"sheetfolio/portfolio"
	"sheetfolio/sheet"
)

type Writer interface {
	Write(path string, page portfolio.Page) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "json":
		return &JSONWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// DetectFormat infers the format from the output extension, defaulting to json.
func DetectFormat(path string) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".") {
	case "xlsx", "xlsm":
		return "excel"
	default:
		return "json"
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

// sheetData is one exported tab; its headers are the labels the decoder
// reads, so an export can be used as a workbook source.
type sheetData struct {
	name    string
	headers []string
	rows    [][]string
}

func pageSheets(page portfolio.Page) []sheetData {
	social := make([][]string, 0, len(page.SocialLinks))
	for _, link := range page.SocialLinks {
		social = append(social, []string{link.Platform, link.URL})
	}
	items := make([][]string, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, []string{item.Title, item.Description, item.ImageURL, item.ProjectURL})
	}
	achievements := make([][]string, 0, len(page.Achievements))
	for _, achievement := range page.Achievements {
		achievements = append(achievements, []string{achievement.Title, achievement.Description, achievement.Date})
	}

	return []sheetData{
		{
			name:    sheet.KindProfile.SheetName(),
			headers: []string{"name", "description"},
			rows:    [][]string{{page.Profile.Name, page.Profile.Description}},
		},
		{
			name:    sheet.KindSocialLinks.SheetName(),
			headers: []string{"platform", "url"},
			rows:    social,
		},
		{
			name:    sheet.KindPortfolio.SheetName(),
			headers: []string{"title", "description", "imageUrl", "projectUrl"},
			rows:    items,
		},
		{
			name:    sheet.KindAchievements.SheetName(),
			headers: []string{"title", "description", "date"},
			rows:    achievements,
		},
	}
}
