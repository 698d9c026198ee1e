package export

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// exportMarkdown writes a front-matter-free Markdown file: title, subtitle,
// introduction, converted body and conclusion.
func exportMarkdown(data TemplateData, name string) (*Result, error) {
	body, err := mdConverter.ConvertString(string(data.BodyHTML))
	if err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", data.Title)
	if data.Subtitle != "" {
		fmt.Fprintf(&b, "_%s_\n\n", data.Subtitle)
	}
	if data.Introduction != "" {
		fmt.Fprintf(&b, "%s\n\n", data.Introduction)
	}
	if body = strings.TrimSpace(body); body != "" {
		fmt.Fprintf(&b, "%s\n\n", body)
	}
	if data.Conclusion != "" {
		fmt.Fprintf(&b, "%s\n", data.Conclusion)
	}

	return &Result{
		Data:     []byte(strings.TrimRight(b.String(), "\n") + "\n"),
		Filename: name + ".md",
		MimeType: "text/markdown; charset=utf-8",
	}, nil
}
