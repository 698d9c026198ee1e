package render

import (
	"fmt"
	"strconv"
	"strings"

	"inkwell/api/internal/block"
)

func editTimeline(b block.Block) string {
	d := payload[*block.TimelineData](b)
	var out strings.Builder
	for i, ev := range d.Events {
		out.WriteString(textInput(field("events", i, "date"), ev.Date, "Date"))
		out.WriteString(textInput(field("events", i, "title"), ev.Title, "Title"))
		out.WriteString(textArea(field("events", i, "description"), ev.Description, "Description"))
	}
	return out.String()
}

func showTimeline(b block.Block) string {
	d := payload[*block.TimelineData](b)
	var out strings.Builder
	out.WriteString("<ol class=\"timeline\">\n")
	for i, ev := range d.Events {
		fmt.Fprintf(&out, "<li>\n%s%s%s</li>\n",
			showIf("time", "", field("events", i, "date"), ev.Date),
			showIf("h4", "", field("events", i, "title"), ev.Title),
			showIf("p", "", field("events", i, "description"), ev.Description))
	}
	out.WriteString("</ol>\n")
	return out.String()
}

func editComparison(b block.Block) string {
	d := payload[*block.ComparisonData](b)
	var out strings.Builder
	for i, col := range d.Columns {
		out.WriteString(textInput(field("columns", i), col, "Option"))
	}
	for r, row := range d.Rows {
		out.WriteString(textInput(field("rows", r, "label"), row.Label, "Feature"))
		for c := range d.Columns {
			out.WriteString(textInput(field("rows", r, "values", c), at(row.Values, c), ""))
		}
	}
	return out.String()
}

func showComparison(b block.Block) string {
	d := payload[*block.ComparisonData](b)
	var out strings.Builder
	out.WriteString("<table class=\"comparison\">\n<thead><tr>\n<th></th>\n")
	for i, col := range d.Columns {
		out.WriteString(show("th", "", field("columns", i), col))
	}
	out.WriteString("</tr></thead>\n<tbody>\n")
	for r, row := range d.Rows {
		out.WriteString("<tr>\n")
		out.WriteString(show("th", "", field("rows", r, "label"), row.Label))
		for c := range d.Columns {
			out.WriteString(show("td", "", field("rows", r, "values", c), at(row.Values, c)))
		}
		out.WriteString("</tr>\n")
	}
	out.WriteString("</tbody>\n</table>\n")
	return out.String()
}

func editPricing(b block.Block) string {
	d := payload[*block.PricingData](b)
	var out strings.Builder
	for i, plan := range d.Plans {
		out.WriteString("<fieldset class=\"plan\">\n")
		out.WriteString(textInput(field("plans", i, "name"), plan.Name, "Plan name"))
		out.WriteString(textInput(field("plans", i, "price"), plan.Price, "Price"))
		out.WriteString(textInput(field("plans", i, "period"), plan.Period, "Period"))
		for j, feature := range plan.Features {
			out.WriteString(textInput(field("plans", i, "features", j), feature, "Feature"))
		}
		out.WriteString(textInput(field("plans", i, "cta"), plan.CTA, "Button label"))
		out.WriteString(checkbox(field("plans", i, "highlighted"), plan.Highlighted, "Highlight"))
		out.WriteString("</fieldset>\n")
	}
	return out.String()
}

func showPricing(b block.Block) string {
	d := payload[*block.PricingData](b)
	var out strings.Builder
	out.WriteString("<div class=\"pricing\">\n")
	for i, plan := range d.Plans {
		class := "plan"
		if plan.Highlighted {
			class += " plan-highlighted"
		}
		fmt.Fprintf(&out, "<div class=\"%s\">\n", class)
		out.WriteString(show("h3", "", field("plans", i, "name"), plan.Name))
		out.WriteString(showIf("span", "price", field("plans", i, "price"), plan.Price))
		out.WriteString(showIf("span", "period", field("plans", i, "period"), plan.Period))
		out.WriteString("<ul>\n")
		for j, feature := range plan.Features {
			out.WriteString(showIf("li", "", field("plans", i, "features", j), feature))
		}
		out.WriteString("</ul>\n")
		out.WriteString(showIf("span", "btn", field("plans", i, "cta"), plan.CTA))
		out.WriteString("</div>\n")
	}
	out.WriteString("</div>\n")
	return out.String()
}

func editTestimonial(b block.Block) string {
	d := payload[*block.TestimonialData](b)
	return textArea("content", b.Content, "What did they say?") +
		textInput("heading", b.Heading, "Name") +
		textInput(field("role"), d.Role, "Role") +
		textInput(field("company"), d.Company, "Company") +
		attrInput("imageUrl", b.ImageURL, "Photo URL") +
		selectInput(field("rating"), strconv.Itoa(d.Rating), []string{"1", "2", "3", "4", "5"})
}

func showTestimonial(b block.Block) string {
	d := payload[*block.TestimonialData](b)
	photo := ""
	if b.ImageURL != "" {
		photo = fmt.Sprintf("<img class=\"avatar\" src=\"%s\" alt=\"%s\">\n", esc(safeURL(b.ImageURL)), esc(b.Heading))
	}
	return fmt.Sprintf("<figure class=\"testimonial\">\n<div class=\"rating\" aria-label=\"%d out of 5\">%s</div>\n%s%s<figcaption>\n%s%s%s</figcaption>\n</figure>\n",
		d.Rating, strings.Repeat("★", d.Rating), show("blockquote", "", "content", b.Content), photo,
		showIf("cite", "", "heading", b.Heading),
		showIf("span", "role", field("role"), d.Role),
		showIf("span", "company", field("company"), d.Company))
}

func editTeam(b block.Block) string {
	d := payload[*block.TeamData](b)
	var out strings.Builder
	for i, m := range d.Members {
		out.WriteString(textInput(field("members", i, "name"), m.Name, "Name"))
		out.WriteString(textInput(field("members", i, "role"), m.Role, "Role"))
		out.WriteString(textArea(field("members", i, "bio"), m.Bio, "Bio"))
		out.WriteString(attrInput(field("members", i, "photoUrl"), m.PhotoURL, "Photo URL"))
	}
	return out.String()
}

func showTeam(b block.Block) string {
	d := payload[*block.TeamData](b)
	var out strings.Builder
	out.WriteString("<div class=\"team\">\n")
	for i, m := range d.Members {
		out.WriteString("<div class=\"member\">\n")
		if m.PhotoURL != "" {
			fmt.Fprintf(&out, "<img src=\"%s\" alt=\"%s\">\n", esc(safeURL(m.PhotoURL)), esc(m.Name))
		}
		out.WriteString(showIf("h4", "", field("members", i, "name"), m.Name))
		out.WriteString(showIf("span", "role", field("members", i, "role"), m.Role))
		out.WriteString(showIf("p", "", field("members", i, "bio"), m.Bio))
		out.WriteString("</div>\n")
	}
	out.WriteString("</div>\n")
	return out.String()
}

func editStats(b block.Block) string {
	d := payload[*block.StatsData](b)
	var out strings.Builder
	for i, item := range d.Items {
		out.WriteString(textInput(field("items", i, "value"), item.Value, "42%"))
		out.WriteString(textInput(field("items", i, "label"), item.Label, "Label"))
	}
	return out.String()
}

func showStats(b block.Block) string {
	d := payload[*block.StatsData](b)
	var out strings.Builder
	out.WriteString("<dl class=\"stats\">\n")
	for i, item := range d.Items {
		out.WriteString(show("dt", "", field("items", i, "value"), item.Value))
		out.WriteString(show("dd", "", field("items", i, "label"), item.Label))
	}
	out.WriteString("</dl>\n")
	return out.String()
}

func editProgress(b block.Block) string {
	d := payload[*block.ProgressData](b)
	var out strings.Builder
	for i, item := range d.Items {
		out.WriteString(textInput(field("items", i, "label"), item.Label, "Label"))
		out.WriteString(numberInput(field("items", i, "value"), float64(item.Value)))
	}
	return out.String()
}

func showProgress(b block.Block) string {
	d := payload[*block.ProgressData](b)
	var out strings.Builder
	for i, item := range d.Items {
		fmt.Fprintf(&out, "<div class=\"progress\">\n%s<div class=\"bar\" role=\"progressbar\" aria-valuenow=\"%d\" style=\"width: %d%%\"></div>\n</div>\n",
			showIf("span", "", field("items", i, "label"), item.Label), item.Value, item.Value)
	}
	return out.String()
}

func editAlert(b block.Block) string {
	d := payload[*block.AlertData](b)
	intents := make([]string, len(block.Intents))
	for i, in := range block.Intents {
		intents[i] = string(in)
	}
	return selectInput(field("intent"), string(d.Intent), intents) +
		textInput("heading", b.Heading, "Title") +
		textArea("content", b.Content, "Message")
}

func showAlert(b block.Block) string {
	d := payload[*block.AlertData](b)
	return fmt.Sprintf("<div class=\"alert alert-%s\" role=\"alert\">\n%s%s</div>\n",
		esc(string(d.Intent)), showIf("strong", "", "heading", b.Heading), show("p", "", "content", b.Content))
}

func editCard(b block.Block) string {
	d := payload[*block.CardData](b)
	return attrInput("imageUrl", b.ImageURL, "Image URL") +
		textInput("heading", b.Heading, "Title") +
		textArea("content", b.Content, "Description") +
		attrInput(field("url"), d.URL, "Link") +
		textInput(field("buttonText"), d.ButtonText, "Button label")
}

func showCard(b block.Block) string {
	d := payload[*block.CardData](b)
	img := ""
	if b.ImageURL != "" {
		img = fmt.Sprintf("<img src=\"%s\" alt=\"%s\">\n", esc(safeURL(b.ImageURL)), esc(b.Heading))
	}
	link := ""
	if d.ButtonText != "" {
		link = fmt.Sprintf("<a class=\"btn\" href=\"%s\" data-field=\"%s\">%s</a>\n", esc(safeURL(d.URL)), field("buttonText"), esc(d.ButtonText))
	}
	return "<div class=\"card\">\n" + img + showIf("h3", "", "heading", b.Heading) + showIf("p", "", "content", b.Content) + link + "</div>\n"
}
