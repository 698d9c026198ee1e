package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"inkwell/api/internal/block"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"formatDate": func(t time.Time, layout string) string { return t.Format(layout) },
	"lower":      strings.ToLower,
}).ParseFS(templateFS, "templates/page.html"))

// PageData is what the public article page shows.
type PageData struct {
	Title         string
	Subtitle      string
	Introduction  string
	Conclusion    string
	FeaturedImage string
	Tags          []string
	PublishedAt   time.Time
	Blocks        []block.Block
}

type pageView struct {
	PageData
	Body template.HTML
}

// Page renders the public article page. The block body goes through the
// same display renderer as the editor preview and is sanitized before it
// is marked safe.
func Page(data PageData) (string, error) {
	view := pageView{PageData: data, Body: template.HTML(Sanitize(DisplayAll(data.Blocks)))}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("figure", "figcaption", "details", "summary", "section", "aside", "time", "cite")
	p.AllowAttrs("class", "role", "id").Globally()
	p.AllowAttrs("aria-label", "aria-controls", "aria-valuenow").Globally()
	p.AllowDataAttributes()
	p.AllowAttrs("open").OnElements("details")
	p.AllowAttrs("src", "title", "height", "frameborder", "allowfullscreen", "loading").OnElements("iframe")
	p.AllowAttrs("src", "controls", "preload").OnElements("video", "audio")
	p.AllowAttrs("loading").OnElements("img")
	p.AllowAttrs("download").OnElements("a")
	p.AllowAttrs("method", "action").OnElements("form")
	p.AllowAttrs("type", "name", "placeholder", "required").OnElements("input", "button")
	p.AllowStyles("width").Matching(regexp.MustCompile(`^\d{1,3}%$`)).OnElements("div")
	return p
}

// Sanitize strips anything from rendered HTML that the public page must not carry.
func Sanitize(fragment string) string {
	return policy.Sanitize(fragment)
}
