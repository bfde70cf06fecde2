// Package render injects decoded page content into the mount points of a
// static HTML page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sheetfolio/internal/timeutil"
	"sheetfolio/portfolio"
)

//go:embed templates/*.html
var templateFS embed.FS

// Mount point element ids.
const (
	MountAboutTitle   = "about-title"
	MountAbout        = "about-content"
	MountSocial       = "social-media"
	MountPortfolio    = "portfolio-items"
	MountAchievements = "achievements-items"
)

const (
	emptyAbout        = "Belum ada deskripsi."
	emptySocial       = "Belum ada tautan media sosial."
	emptyPortfolio    = "Belum ada project untuk ditampilkan."
	emptyAchievements = "Belum ada pencapaian untuk ditampilkan."
)

var iconNamePattern = regexp.MustCompile(`[^a-z0-9-]+`)

type Options struct {
	// TemplatePath overrides the embedded page. It must contain the mount
	// point ids; missing ones are skipped.
	TemplatePath     string
	PlaceholderImage string
	Logger           *zap.Logger
}

type Renderer struct {
	base      []byte
	fragments *template.Template
	logger    *zap.Logger
}

// Report lists the sections that kept their previous markup because their
// fragment failed to render, and mount points the page does not have.
type Report struct {
	FailedSections []string
	MissingMounts  []string
}

func New(opts Options) (*Renderer, error) {
	base, err := templateFS.ReadFile("templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("read embedded page: %w", err)
	}
	if strings.TrimSpace(opts.TemplatePath) != "" {
		base, err = os.ReadFile(opts.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("read page template %s: %w", opts.TemplatePath, err)
		}
	}

	placeholder := opts.PlaceholderImage
	if placeholder == "" {
		placeholder = portfolio.PlaceholderImageURL
	}

	fragments, err := template.New("fragments").Funcs(templateFuncs(placeholder)).ParseFS(templateFS, "templates/fragments.html")
	if err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Renderer{base: base, fragments: fragments, logger: logger}, nil
}

// Render writes the page with every mount point replaced. Each section is
// rendered in isolation; a failing section leaves its mount point untouched.
func (r *Renderer) Render(w io.Writer, page portfolio.Page) (Report, error) {
	var report Report
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.base))
	if err != nil {
		return report, fmt.Errorf("parse page: %w", err)
	}

	r.section(doc, &report, MountAboutTitle, func() (string, error) {
		return template.HTMLEscapeString(page.Profile.Name), nil
	})
	r.section(doc, &report, MountAbout, func() (string, error) {
		if page.Profile.Description == "" {
			return r.execute("empty", emptyAbout)
		}
		return r.execute("about", page.Profile)
	})
	r.section(doc, &report, MountSocial, func() (string, error) {
		if len(page.SocialLinks) == 0 {
			return r.execute("empty", emptySocial)
		}
		return r.execute("social", page.SocialLinks)
	})
	r.section(doc, &report, MountPortfolio, func() (string, error) {
		if len(page.Items) == 0 {
			return r.execute("empty", emptyPortfolio)
		}
		return r.execute("portfolio", page.Items)
	})
	r.section(doc, &report, MountAchievements, func() (string, error) {
		if len(page.Achievements) == 0 {
			return r.execute("empty", emptyAchievements)
		}
		return r.execute("achievements", page.Achievements)
	})

	return report, writeDocument(w, doc)
}

// RenderError writes the page with an error banner appended to the body.
// Mount points keep their template markup.
func (r *Renderer) RenderError(w io.Writer, cause error) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.base))
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}
	banner, err := r.execute("banner", cause.Error())
	if err != nil {
		return err
	}
	doc.Find("body").AppendHtml(banner)
	return writeDocument(w, doc)
}

func (r *Renderer) section(doc *goquery.Document, report *Report, mount string, build func() (string, error)) {
	target := doc.Find("#" + mount)
	if target.Length() == 0 {
		report.MissingMounts = append(report.MissingMounts, mount)
		r.logger.Debug("mount point missing", zap.String("mount", mount))
		return
	}

	markup, err := safeBuild(build)
	if err != nil {
		report.FailedSections = append(report.FailedSections, mount)
		r.logger.Warn("render section failed", zap.String("mount", mount), zap.Error(err))
		return
	}
	target.SetHtml(markup)
}

func safeBuild(build func() (string, error)) (markup string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return build()
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute %s fragment: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func writeDocument(w io.Writer, doc *goquery.Document) error {
	markup, err := doc.Html()
	if err != nil {
		return fmt.Errorf("serialize page: %w", err)
	}
	if _, err := io.WriteString(w, markup); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}

func templateFuncs(placeholder string) template.FuncMap {
	return template.FuncMap{
		"delay": func(index, step int) int {
			return index * step
		},
		"placeholder": func() string {
			return placeholder
		},
		"platformLabel": func(platform string) string {
			// Casers are stateful; one per call keeps Render safe for concurrent use.
			return cases.Title(language.Indonesian).String(strings.TrimSpace(platform))
		},
		"iconName": func(platform string) string {
			return iconNamePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(platform)), "")
		},
		// Unknown dates render nothing.
		"longDate": func(iso string) string {
			if iso == "" {
				return ""
			}
			formatted, err := timeutil.LongDateID(iso)
			if err != nil {
				return ""
			}
			return formatted
		},
	}
}
