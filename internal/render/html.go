package render

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"inkwell/api/internal/block"
)

var esc = html.EscapeString

func editFrame(b block.Block, body string) string {
	return fmt.Sprintf("<div class=\"block-editor\" data-block-id=\"%s\" data-block-type=\"%s\">\n<div class=\"block-label\">%s</div>\n%s</div>\n",
		esc(b.ID), esc(string(b.Type)), esc(block.LabelFor(b.Type)), body)
}

func showFrame(b block.Block, body string) string {
	return fmt.Sprintf("<div class=\"block block-%s\" data-block-id=\"%s\">\n%s</div>\n", esc(string(b.Type)), esc(b.ID), body)
}

// textInput is a single-line control whose value is part of the article text.
func textInput(path, value, placeholder string) string {
	return fmt.Sprintf("<input type=\"text\" name=\"%s\" data-field=\"%s\" value=\"%s\" placeholder=\"%s\">\n",
		esc(path), esc(path), esc(value), esc(placeholder))
}

func textInputClass(path, value, placeholder, class string) string {
	return fmt.Sprintf("<input type=\"text\" class=\"%s\" name=\"%s\" data-field=\"%s\" value=\"%s\" placeholder=\"%s\">\n",
		esc(class), esc(path), esc(path), esc(value), esc(placeholder))
}

func textArea(path, value, placeholder string) string {
	return fmt.Sprintf("<textarea name=\"%s\" data-field=\"%s\" placeholder=\"%s\">%s</textarea>\n",
		esc(path), esc(path), esc(placeholder), esc(value))
}

// attrInput edits a value that is never shown as text (URLs, alt text).
func attrInput(path, value, placeholder string) string {
	return fmt.Sprintf("<input type=\"url\" name=\"%s\" value=\"%s\" placeholder=\"%s\">\n", esc(path), esc(value), esc(placeholder))
}

func numberInput(path string, value float64) string {
	return fmt.Sprintf("<input type=\"number\" name=\"%s\" value=\"%s\">\n", esc(path), strconv.FormatFloat(value, 'f', -1, 64))
}

func checkbox(path string, checked bool, label string) string {
	attr := ""
	if checked {
		attr = " checked"
	}
	return fmt.Sprintf("<label><input type=\"checkbox\" name=\"%s\"%s> %s</label>\n", esc(path), attr, esc(label))
}

func selectInput(path, value string, options []string) string {
	var out strings.Builder
	fmt.Fprintf(&out, "<select name=\"%s\">", esc(path))
	for _, option := range options {
		selected := ""
		if option == value {
			selected = " selected"
		}
		fmt.Fprintf(&out, "<option value=\"%s\"%s>%s</option>", esc(option), selected, esc(option))
	}
	out.WriteString("</select>\n")
	return out.String()
}

// show wraps a text value in a marked element.
func show(tag, class, path, value string) string {
	return fmt.Sprintf("<%s class=\"%s\" data-field=\"%s\">%s</%s>\n", tag, esc(class), esc(path), esc(value), tag)
}

// showIf is show for optional values.
func showIf(tag, class, path, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return show(tag, class, path, value)
}

func field(parts ...any) string {
	segs := make([]string, len(parts))
	for i, p := range parts {
		segs[i] = fmt.Sprint(p)
	}
	return "blockData." + strings.Join(segs, ".")
}

// safeURL keeps http(s), mailto and relative references; anything else
// becomes "#".
func safeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "#"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return u.String()
	default:
		return "#"
	}
}

func lines(content string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func at(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}
