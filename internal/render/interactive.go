package render

import (
	"fmt"
	"strconv"
	"strings"

	"inkwell/api/internal/block"
)

func editEmbed(b block.Block) string {
	d := payload[*block.EmbedData](b)
	out := attrInput(field("url"), d.URL, "Paste a YouTube, Vimeo or Loom link")
	if src := embedSrc(d.Provider, d.EmbedID); src != "" {
		out += fmt.Sprintf("<div class=\"embed-status\">%s video ready</div>\n", esc(d.Provider))
	} else {
		out += "<div class=\"embed-status\">Awaiting URL</div>\n"
	}
	return out + textInput("content", b.Content, "Caption")
}

func showEmbed(b block.Block) string {
	d := payload[*block.EmbedData](b)
	src := embedSrc(d.Provider, d.EmbedID)
	if src == "" {
		return "<div class=\"embed-placeholder\">Awaiting URL</div>\n" + showIf("p", "caption", "content", b.Content)
	}
	return fmt.Sprintf("<figure class=\"embed embed-%s\">\n<iframe src=\"%s\" title=\"%s\" frameborder=\"0\" allowfullscreen loading=\"lazy\"></iframe>\n%s</figure>\n",
		esc(d.Provider), esc(src), esc(b.Content), showIf("figcaption", "", "content", b.Content))
}

func editLinkPreview(b block.Block) string {
	d := payload[*block.LinkPreviewData](b)
	return attrInput(field("url"), d.URL, "https://") +
		textInput("heading", b.Heading, "Title") +
		textArea(field("description"), d.Description, "Description") +
		textInput(field("siteName"), d.SiteName, "Site name") +
		attrInput("imageUrl", b.ImageURL, "Thumbnail URL")
}

func showLinkPreview(b block.Block) string {
	d := payload[*block.LinkPreviewData](b)
	thumb := ""
	if b.ImageURL != "" {
		thumb = fmt.Sprintf("<img src=\"%s\" alt=\"\">\n", esc(safeURL(b.ImageURL)))
	}
	return fmt.Sprintf("<a class=\"link-preview\" href=\"%s\" rel=\"noopener\">\n%s%s%s%s</a>\n",
		esc(safeURL(d.URL)), thumb,
		showIf("strong", "", "heading", b.Heading),
		showIf("p", "", field("description"), d.Description),
		showIf("span", "site", field("siteName"), d.SiteName))
}

func editTable(b block.Block) string {
	d := payload[*block.TableData](b)
	var out strings.Builder
	out.WriteString("<div class=\"table-editor\">\n")
	for i, h := range d.Headers {
		out.WriteString(textInput(field("headers", i), h, "Header"))
	}
	for r, row := range d.Rows {
		for c, cell := range row {
			out.WriteString(textInput(field("rows", r, c), cell, ""))
		}
	}
	out.WriteString("</div>\n")
	return out.String()
}

func showTable(b block.Block) string {
	d := payload[*block.TableData](b)
	var out strings.Builder
	out.WriteString("<table>\n")
	if len(d.Headers) > 0 {
		out.WriteString("<thead><tr>\n")
		for i, h := range d.Headers {
			out.WriteString(show("th", "", field("headers", i), h))
		}
		out.WriteString("</tr></thead>\n")
	}
	out.WriteString("<tbody>\n")
	for r, row := range d.Rows {
		out.WriteString("<tr>\n")
		for c, cell := range row {
			out.WriteString(show("td", "", field("rows", r, c), cell))
		}
		out.WriteString("</tr>\n")
	}
	out.WriteString("</tbody>\n</table>\n")
	return out.String()
}

func editButton(b block.Block) string {
	d := payload[*block.ButtonData](b)
	return textInput("content", b.Content, "Button label") +
		attrInput(field("url"), d.URL, "https://") +
		selectInput(field("variant"), d.Variant, []string{"primary", "secondary", "outline", "ghost"}) +
		checkbox(field("openInNewTab"), d.OpenInNewTab, "Open in new tab")
}

func showButton(b block.Block) string {
	d := payload[*block.ButtonData](b)
	target := ""
	if d.OpenInNewTab {
		target = " target=\"_blank\" rel=\"noopener\""
	}
	return fmt.Sprintf("<a class=\"btn btn-%s\" href=\"%s\"%s data-field=\"content\">%s</a>\n",
		esc(d.Variant), esc(safeURL(d.URL)), target, esc(b.Content))
}

func editGallery(b block.Block) string {
	d := payload[*block.GalleryData](b)
	var out strings.Builder
	out.WriteString(selectInput(field("columns"), strconv.Itoa(d.Columns), []string{"1", "2", "3", "4", "5", "6"}))
	for i, img := range d.Images {
		out.WriteString(attrInput(field("images", i), img, "Image URL"))
		out.WriteString(textInput(field("captions", i), at(d.Captions, i), "Caption"))
	}
	return out.String()
}

func showGallery(b block.Block) string {
	d := payload[*block.GalleryData](b)
	var out strings.Builder
	fmt.Fprintf(&out, "<div class=\"gallery grid-cols-%d\">\n", d.Columns)
	for i, img := range d.Images {
		fmt.Fprintf(&out, "<figure>\n<img src=\"%s\" alt=\"%s\" loading=\"lazy\">\n%s</figure>\n",
			esc(safeURL(img)), esc(at(d.Captions, i)), showIf("figcaption", "", field("captions", i), at(d.Captions, i)))
	}
	out.WriteString("</div>\n")
	return out.String()
}

func editAccordion(b block.Block) string {
	d := payload[*block.AccordionData](b)
	var out strings.Builder
	for i, item := range d.Items {
		out.WriteString(textInput(field("items", i, "title"), item.Title, "Title"))
		out.WriteString(textArea(field("items", i, "body"), item.Body, "Content"))
	}
	return out.String()
}

func showAccordion(b block.Block) string {
	d := payload[*block.AccordionData](b)
	var out strings.Builder
	for i, item := range d.Items {
		fmt.Fprintf(&out, "<details class=\"accordion-item\">\n%s%s</details>\n",
			show("summary", "", field("items", i, "title"), item.Title),
			show("div", "", field("items", i, "body"), item.Body))
	}
	return out.String()
}

func editToggle(b block.Block) string {
	d := payload[*block.ToggleData](b)
	return textInput("heading", b.Heading, "Toggle title") +
		textArea("content", b.Content, "Hidden content") +
		checkbox(field("open"), d.Open, "Open by default")
}

func showToggle(b block.Block) string {
	d := payload[*block.ToggleData](b)
	open := ""
	if d.Open {
		open = " open"
	}
	return fmt.Sprintf("<details class=\"toggle\"%s>\n%s%s</details>\n", open,
		show("summary", "", "heading", b.Heading), show("div", "", "content", b.Content))
}

func editTabs(b block.Block) string {
	d := payload[*block.TabsData](b)
	var out strings.Builder
	for i, tab := range d.Tabs {
		out.WriteString(textInput(field("tabs", i, "label"), tab.Label, "Tab label"))
		out.WriteString(textArea(field("tabs", i, "body"), tab.Body, "Tab content"))
	}
	return out.String()
}

func showTabs(b block.Block) string {
	d := payload[*block.TabsData](b)
	var out strings.Builder
	out.WriteString("<div class=\"tabs\" role=\"tablist\">\n")
	for i, tab := range d.Tabs {
		fmt.Fprintf(&out, "<button type=\"button\" role=\"tab\" aria-controls=\"%s-tab-%d\">%s</button>\n", esc(b.ID), i, esc(tab.Label))
	}
	out.WriteString("</div>\n")
	for i, tab := range d.Tabs {
		fmt.Fprintf(&out, "<section id=\"%s-tab-%d\" role=\"tabpanel\">\n%s%s</section>\n", esc(b.ID), i,
			show("h4", "sr-only", field("tabs", i, "label"), tab.Label),
			show("div", "", field("tabs", i, "body"), tab.Body))
	}
	return out.String()
}

func editSpoiler(b block.Block) string {
	d := payload[*block.SpoilerData](b)
	return textInput(field("label"), d.Label, "Label") + textArea("content", b.Content, "Hidden text")
}

func showSpoiler(b block.Block) string {
	d := payload[*block.SpoilerData](b)
	return fmt.Sprintf("<details class=\"spoiler\">\n%s%s</details>\n",
		show("summary", "", field("label"), d.Label), show("div", "", "content", b.Content))
}

func editColumns(b block.Block) string {
	d := payload[*block.ColumnsData](b)
	var out strings.Builder
	for i, col := range d.Columns {
		out.WriteString(textArea(field("columns", i), col, fmt.Sprintf("Column %d", i+1)))
	}
	return out.String()
}

func showColumns(b block.Block) string {
	d := payload[*block.ColumnsData](b)
	var out strings.Builder
	fmt.Fprintf(&out, "<div class=\"columns grid-cols-%d\">\n", len(d.Columns))
	for i, col := range d.Columns {
		out.WriteString(show("div", "column", field("columns", i), col))
	}
	out.WriteString("</div>\n")
	return out.String()
}
