// Package render turns blocks into HTML in two contexts: the editing form
// and the read-only display used by the preview and the public page. Both
// contexts are looked up in one registry so every variant always has both.
package render

import (
	"strings"

	"inkwell/api/internal/block"
)

// Variant is the pair of behaviors every block type supplies.
type Variant struct {
	Edit    func(block.Block) string
	Display func(block.Block) string
}

var registry = map[block.Type]Variant{
	block.TypeParagraph: {editParagraph, showParagraph},
	block.TypeHeading:   {editHeading, showHeading},
	block.TypeQuote:     {editQuote, showQuote},
	block.TypeList:      {editList, showList},
	block.TypeCode:      {editCode, showCode},
	block.TypeDivider:   {editDivider, showDivider},

	block.TypeEmbed:       {editEmbed, showEmbed},
	block.TypeLinkPreview: {editLinkPreview, showLinkPreview},
	block.TypeTable:       {editTable, showTable},
	block.TypeButton:      {editButton, showButton},
	block.TypeGallery:     {editGallery, showGallery},
	block.TypeAccordion:   {editAccordion, showAccordion},
	block.TypeToggle:      {editToggle, showToggle},
	block.TypeTabs:        {editTabs, showTabs},
	block.TypeSpoiler:     {editSpoiler, showSpoiler},
	block.TypeColumns:     {editColumns, showColumns},

	block.TypeImage: {editImage, showImage},
	block.TypeVideo: {editVideo, showVideo},
	block.TypeAudio: {editAudio, showAudio},
	block.TypeFile:  {editFile, showFile},
	block.TypePDF:   {editPDF, showPDF},

	block.TypeTimeline:    {editTimeline, showTimeline},
	block.TypeComparison:  {editComparison, showComparison},
	block.TypePricing:     {editPricing, showPricing},
	block.TypeTestimonial: {editTestimonial, showTestimonial},
	block.TypeTeam:        {editTeam, showTeam},
	block.TypeStats:       {editStats, showStats},
	block.TypeProgress:    {editProgress, showProgress},
	block.TypeAlert:       {editAlert, showAlert},
	block.TypeCard:        {editCard, showCard},

	block.TypeSocialShare:     {editSocialShare, showSocialShare},
	block.TypeRelatedArticles: {editRelated, showRelated},
	block.TypeAuthorBox:       {editAuthorBox, showAuthorBox},
	block.TypeNewsletterCTA:   {editNewsletter, showNewsletter},

	block.TypeMap:            {editMap, showMap},
	block.TypeMathExpression: {editMath, showMath},
	block.TypeDiagram:        {editDiagram, showDiagram},
}

// Lookup returns the behaviors registered for t.
func Lookup(t block.Type) (Variant, bool) {
	v, ok := registry[t]
	return v, ok
}

// Edit renders the editing form of b. Unknown types render nothing.
func Edit(b block.Block) string {
	v, ok := registry[b.Type]
	if !ok {
		return ""
	}
	return editFrame(b, v.Edit(b))
}

// Display renders the read-only form of b. Unknown types render nothing.
func Display(b block.Block) string {
	v, ok := registry[b.Type]
	if !ok {
		return ""
	}
	return showFrame(b, v.Display(b))
}

// DisplayAll renders a block list in order.
func DisplayAll(blocks []block.Block) string {
	var out strings.Builder
	for _, b := range blocks {
		out.WriteString(Display(b))
	}
	return out.String()
}

// EditAll renders the editing forms of a block list in order.
func EditAll(blocks []block.Block) string {
	var out strings.Builder
	for _, b := range blocks {
		out.WriteString(Edit(b))
	}
	return out.String()
}
