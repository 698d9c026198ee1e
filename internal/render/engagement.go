package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"inkwell/api/internal/block"
)

var sharePlatforms = []string{"twitter", "facebook", "linkedin", "reddit", "email"}

func editSocialShare(b block.Block) string {
	d := payload[*block.SocialShareData](b)
	enabled := make(map[string]bool, len(d.Platforms))
	for _, p := range d.Platforms {
		enabled[p] = true
	}
	out := textInput("heading", b.Heading, "Share this article")
	for _, p := range sharePlatforms {
		checked := ""
		if enabled[p] {
			checked = " checked"
		}
		out += fmt.Sprintf("<label><input type=\"checkbox\" name=\"%s\" value=\"%s\"%s> %s</label>\n", field("platforms"), p, checked, p)
	}
	return out
}

func showSocialShare(b block.Block) string {
	d := payload[*block.SocialShareData](b)
	var out strings.Builder
	out.WriteString(showIf("p", "", "heading", b.Heading))
	out.WriteString("<div class=\"share\">\n")
	for _, p := range d.Platforms {
		if p == "" {
			continue
		}
		fmt.Fprintf(&out, "<button type=\"button\" class=\"share-%s\" data-platform=\"%s\">%s</button>\n", esc(p), esc(p), esc(p))
	}
	out.WriteString("</div>\n")
	return out.String()
}

func editRelated(b block.Block) string {
	d := payload[*block.RelatedArticlesData](b)
	return textInput("heading", b.Heading, "Related articles") +
		fmt.Sprintf("<input type=\"text\" name=\"%s\" value=\"%s\" placeholder=\"Article ids, comma separated\">\n",
			field("articleIds"), esc(strings.Join(d.ArticleIDs, ","))) +
		numberInput(field("limit"), float64(d.Limit))
}

func showRelated(b block.Block) string {
	d := payload[*block.RelatedArticlesData](b)
	ids := d.ArticleIDs
	if len(ids) > d.Limit {
		ids = ids[:d.Limit]
	}
	return showIf("h3", "", "heading", b.Heading) +
		fmt.Sprintf("<ul class=\"related\" data-article-ids=\"%s\" data-limit=\"%d\"></ul>\n", esc(strings.Join(ids, ",")), d.Limit)
}

func editAuthorBox(b block.Block) string {
	d := payload[*block.AuthorBoxData](b)
	return attrInput("imageUrl", b.ImageURL, "Avatar URL") +
		textInput("heading", b.Heading, "Author name") +
		textArea("content", b.Content, "Short bio") +
		attrInput(field("socialUrl"), d.SocialURL, "Profile link")
}

func showAuthorBox(b block.Block) string {
	d := payload[*block.AuthorBoxData](b)
	var out strings.Builder
	fmt.Fprintf(&out, "<aside class=\"author-box\" data-author=\"%s\">\n", esc(d.AuthorRef))
	if b.ImageURL != "" {
		fmt.Fprintf(&out, "<img class=\"avatar\" src=\"%s\" alt=\"%s\">\n", esc(safeURL(b.ImageURL)), esc(b.Heading))
	}
	out.WriteString(showIf("h4", "", "heading", b.Heading))
	out.WriteString(showIf("p", "", "content", b.Content))
	if d.SocialURL != "" {
		fmt.Fprintf(&out, "<a href=\"%s\" rel=\"noopener\">Profile</a>\n", esc(safeURL(d.SocialURL)))
	}
	out.WriteString("</aside>\n")
	return out.String()
}

func editNewsletter(b block.Block) string {
	d := payload[*block.NewsletterData](b)
	return textInput("heading", b.Heading, "Stay in the loop") +
		textArea("content", b.Content, "Pitch") +
		attrInput(field("placeholder"), d.Placeholder, "Email placeholder") +
		textInput(field("buttonText"), d.ButtonText, "Button label")
}

func showNewsletter(b block.Block) string {
	d := payload[*block.NewsletterData](b)
	return fmt.Sprintf("<div class=\"newsletter\">\n%s%s<form method=\"post\" action=\"/newsletter\">\n<input type=\"email\" name=\"email\" placeholder=\"%s\" required>\n<button type=\"submit\" data-field=\"%s\">%s</button>\n</form>\n</div>\n",
		showIf("h3", "", "heading", b.Heading), showIf("p", "", "content", b.Content),
		esc(d.Placeholder), field("buttonText"), esc(d.ButtonText))
}

func editMap(b block.Block) string {
	d := payload[*block.MapData](b)
	return textInput(field("address"), d.Address, "Address") +
		numberInput(field("latitude"), d.Latitude) +
		numberInput(field("longitude"), d.Longitude) +
		numberInput(field("zoom"), float64(d.Zoom))
}

func showMap(b block.Block) string {
	d := payload[*block.MapData](b)
	lat := strconv.FormatFloat(d.Latitude, 'f', -1, 64)
	lon := strconv.FormatFloat(d.Longitude, 'f', -1, 64)
	q := url.Values{"mlat": {lat}, "mlon": {lon}}
	link := fmt.Sprintf("https://www.openstreetmap.org/?%s#map=%d/%s/%s", q.Encode(), d.Zoom, lat, lon)
	return fmt.Sprintf("<div class=\"map\" data-lat=\"%s\" data-lng=\"%s\" data-zoom=\"%d\">\n%s<a href=\"%s\" rel=\"noopener\">View map</a>\n</div>\n",
		lat, lon, d.Zoom, showIf("p", "", field("address"), d.Address), esc(link))
}

func editMath(b block.Block) string {
	d := payload[*block.MathData](b)
	return fmt.Sprintf("<textarea class=\"font-mono\" name=\"content\" data-field=\"content\" placeholder=\"E = mc^2\">%s</textarea>\n", esc(b.Content)) +
		checkbox(field("displayMode"), d.DisplayMode, "Display mode")
}

func showMath(b block.Block) string {
	d := payload[*block.MathData](b)
	mode := "inline"
	if d.DisplayMode {
		mode = "display"
	}
	return fmt.Sprintf("<pre class=\"math math-%s\" data-field=\"content\">%s</pre>\n", mode, esc(b.Content))
}

func editDiagram(b block.Block) string {
	d := payload[*block.DiagramData](b)
	return selectInput(field("syntax"), d.Syntax, []string{"mermaid", "plantuml", "graphviz"}) +
		fmt.Sprintf("<textarea class=\"font-mono\" name=\"content\" data-field=\"content\" placeholder=\"graph TD; A-->B\">%s</textarea>\n", esc(b.Content))
}

func showDiagram(b block.Block) string {
	d := payload[*block.DiagramData](b)
	return fmt.Sprintf("<pre class=\"diagram diagram-%s\" data-field=\"content\">%s</pre>\n", esc(d.Syntax), esc(b.Content))
}
