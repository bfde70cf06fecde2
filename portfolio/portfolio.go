package portfolio

// PlaceholderImageURL is used for portfolio items without an image.
const PlaceholderImageURL = "https://via.placeholder.com/600x400?text=Project+Image"

const (
	UntitledProject     = "Untitled Project"
	UntitledAchievement = "Untitled Achievement"
)

// Profile is the single About record shown at the top of the page.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Item is one portfolio project card. ProjectURL is optional.
type Item struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	ProjectURL  string `json:"projectUrl"`
}

// Achievement carries its date as YYYY-MM-DD, or an empty string when the
// source date could not be resolved.
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// Page is the decoded content of one load.
type Page struct {
	Profile      Profile       `json:"about"`
	SocialLinks  []SocialLink  `json:"socialMedia"`
	Items        []Item        `json:"portfolio"`
	Achievements []Achievement `json:"achievements"`
}

// EmptyPage returns a page whose lists are empty but non-nil.
func EmptyPage() Page {
	return Page{
		SocialLinks:  []SocialLink{},
		Items:        []Item{},
		Achievements: []Achievement{},
	}
}
