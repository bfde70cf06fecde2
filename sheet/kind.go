package sheet

import "fmt"

// Kind identifies one of the four fixed sheets and the record shape decoded
// from it.
type Kind int

const (
	KindProfile Kind = iota
	KindSocialLinks
	KindPortfolio
	KindAchievements
)

var sheetNames = [...]string{
	KindProfile:      "About",
	KindSocialLinks:  "SocialMedia",
	KindPortfolio:    "Portfolio",
	KindAchievements: "Achievements",
}

// Kinds returns all kinds in page order.
func Kinds() []Kind {
	return []Kind{KindProfile, KindSocialLinks, KindPortfolio, KindAchievements}
}

// SheetName returns the spreadsheet tab the kind is read from.
func (k Kind) SheetName() string {
	if k < 0 || int(k) >= len(sheetNames) {
		return ""
	}
	return sheetNames[k]
}

func (k Kind) String() string {
	if name := k.SheetName(); name != "" {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindBySheetName resolves a sheet name case-insensitively.
func KindBySheetName(name string) (Kind, error) {
	normalized := normalizeLabel(name)
	for _, kind := range Kinds() {
		if normalizeLabel(kind.SheetName()) == normalized {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unsupported sheet: %s", name)
}
