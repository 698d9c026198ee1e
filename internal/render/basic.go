package render

import (
	"fmt"
	"strings"

	"inkwell/api/internal/block"
)

func payload[T block.Payload](b block.Block) T {
	p, _ := b.Payload().(T)
	return p
}

func editParagraph(b block.Block) string {
	d := payload[*block.ParagraphData](b)
	return textArea("content", b.Content, "Start writing...") +
		selectInput(field("align"), d.Align, []string{"left", "center", "right", "justify"})
}

func showParagraph(b block.Block) string {
	d := payload[*block.ParagraphData](b)
	return show("p", "text-"+d.Align, "content", b.Content)
}

var headingSize = map[block.HeadingLevel]string{
	block.HeadingH2: "text-2xl",
	block.HeadingH3: "text-xl",
	block.HeadingH4: "text-lg",
}

func editHeading(b block.Block) string {
	d := payload[*block.HeadingData](b)
	return fmt.Sprintf("<label class=\"field-label\">Heading (%s)</label>\n", strings.ToUpper(string(d.Level))) +
		selectInput(field("headingLevel"), string(d.Level), []string{"h2", "h3", "h4"}) +
		textInputClass("content", b.Content, "Heading", headingSize[d.Level]+" font-bold")
}

func showHeading(b block.Block) string {
	d := payload[*block.HeadingData](b)
	return show(string(d.Level), headingSize[d.Level]+" font-bold", "content", b.Content)
}

func editQuote(b block.Block) string {
	d := payload[*block.QuoteData](b)
	return textArea("content", b.Content, "Quote") +
		textInput("heading", b.Heading, "Attribution") +
		selectInput(field("style"), d.Style, []string{"default", "pull", "bordered"})
}

func showQuote(b block.Block) string {
	d := payload[*block.QuoteData](b)
	return fmt.Sprintf("<blockquote class=\"quote quote-%s\">\n%s%s</blockquote>\n",
		esc(d.Style), show("p", "", "content", b.Content), showIf("cite", "", "heading", b.Heading))
}

func editList(b block.Block) string {
	d := payload[*block.ListData](b)
	return selectInput(field("listStyle"), string(d.Style), []string{string(block.ListBullet), string(block.ListNumbered)}) +
		textArea("content", b.Content, "One item per line")
}

func showList(b block.Block) string {
	d := payload[*block.ListData](b)
	tag := "ul"
	if d.Style == block.ListNumbered {
		tag = "ol"
	}
	var items strings.Builder
	for _, line := range lines(b.Content) {
		items.WriteString(show("li", "", "content", line))
	}
	return fmt.Sprintf("<%s>\n%s</%s>\n", tag, items.String(), tag)
}

func editCode(b block.Block) string {
	d := payload[*block.CodeData](b)
	return selectInput(field("language"), d.Language, block.Languages) +
		fmt.Sprintf("<textarea class=\"font-mono\" name=\"content\" data-field=\"content\" spellcheck=\"false\">%s</textarea>\n", esc(b.Content))
}

func showCode(b block.Block) string {
	d := payload[*block.CodeData](b)
	return fmt.Sprintf("<pre class=\"code\"><code class=\"language-%s\" data-field=\"content\">%s</code></pre>\n", esc(d.Language), esc(b.Content))
}

func editDivider(b block.Block) string {
	d := payload[*block.DividerData](b)
	return selectInput(field("style"), d.Style, []string{"solid", "dashed", "dotted", "space"})
}

func showDivider(b block.Block) string {
	d := payload[*block.DividerData](b)
	return fmt.Sprintf("<hr class=\"divider divider-%s\">\n", esc(d.Style))
}
