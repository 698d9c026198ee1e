package export

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var articleTemplate = template.Must(template.New("article.html").Funcs(template.FuncMap{
	"lower": strings.ToLower,
	"formatDate": func(t *time.Time, layout string) string {
		if t == nil {
			return ""
		}
		return t.Format(layout)
	},
}).ParseFS(templateFS, "templates/article.html"))

// TemplateData holds data for article template rendering
type TemplateData struct {
	Title        string
	Subtitle     string
	Introduction string
	Conclusion   string
	Author       string
	Tags         []string
	PublishedAt  *time.Time
	BodyHTML     template.HTML
}

// RenderArticleHTML renders the standalone article document.
func RenderArticleHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := articleTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
