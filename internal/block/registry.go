package block

type variant struct {
	label    string
	category Category
	defaults func() Payload
}

// order is the picker order; it is also the canonical list of known types.
var order = []Type{
	TypeParagraph, TypeHeading, TypeQuote, TypeList, TypeCode, TypeDivider,
	TypeEmbed, TypeLinkPreview, TypeTable, TypeButton, TypeGallery, TypeAccordion, TypeToggle, TypeTabs, TypeSpoiler, TypeColumns,
	TypeImage, TypeVideo, TypeAudio, TypeFile, TypePDF,
	TypeTimeline, TypeComparison, TypePricing, TypeTestimonial, TypeTeam, TypeStats, TypeProgress, TypeAlert, TypeCard,
	TypeSocialShare, TypeRelatedArticles, TypeAuthorBox, TypeNewsletterCTA,
	TypeMap, TypeMathExpression, TypeDiagram,
}

var registry = map[Type]variant{
	TypeParagraph: {"Paragraph", CategoryBasic, func() Payload { return &ParagraphData{Align: "left"} }},
	TypeHeading:   {"Heading", CategoryBasic, func() Payload { return &HeadingData{Level: HeadingH2} }},
	TypeQuote:     {"Quote", CategoryBasic, func() Payload { return &QuoteData{Style: "default"} }},
	TypeList:      {"List", CategoryBasic, func() Payload { return &ListData{Style: ListBullet} }},
	TypeCode:      {"Code", CategoryBasic, func() Payload { return &CodeData{Language: "javascript"} }},
	TypeDivider:   {"Divider", CategoryBasic, func() Payload { return &DividerData{Style: "solid"} }},

	TypeEmbed:       {"Embed", CategoryInteractive, func() Payload { return &EmbedData{} }},
	TypeLinkPreview: {"Link Preview", CategoryInteractive, func() Payload { return &LinkPreviewData{} }},
	TypeTable: {"Table", CategoryInteractive, func() Payload {
		return &TableData{Headers: []string{"Column 1", "Column 2"}, Rows: [][]string{{"", ""}}}
	}},
	TypeButton:  {"Button", CategoryInteractive, func() Payload { return &ButtonData{Variant: "primary"} }},
	TypeGallery: {"Gallery", CategoryInteractive, func() Payload { return &GalleryData{Images: []string{}, Captions: []string{}, Columns: 3} }},
	TypeAccordion: {"Accordion", CategoryInteractive, func() Payload {
		return &AccordionData{Items: []AccordionItem{{}}}
	}},
	TypeToggle: {"Toggle", CategoryInteractive, func() Payload { return &ToggleData{} }},
	TypeTabs: {"Tabs", CategoryInteractive, func() Payload {
		return &TabsData{Tabs: []Tab{{Label: "Tab 1"}, {Label: "Tab 2"}}}
	}},
	TypeSpoiler: {"Spoiler", CategoryInteractive, func() Payload { return &SpoilerData{Label: "Show spoiler"} }},
	TypeColumns: {"Columns", CategoryInteractive, func() Payload { return &ColumnsData{Columns: []string{"", ""}} }},

	TypeImage: {"Image", CategoryMedia, func() Payload { return &ImageData{Width: "full"} }},
	TypeVideo: {"Video", CategoryMedia, func() Payload { return &VideoData{} }},
	TypeAudio: {"Audio", CategoryMedia, func() Payload { return &AudioData{} }},
	TypeFile:  {"File", CategoryMedia, func() Payload { return &FileData{} }},
	TypePDF:   {"PDF", CategoryMedia, func() Payload { return &PDFData{Height: 600} }},

	TypeTimeline: {"Timeline", CategoryStructured, func() Payload { return &TimelineData{Events: []TimelineEvent{{}}} }},
	TypeComparison: {"Comparison", CategoryStructured, func() Payload {
		return &ComparisonData{Columns: []string{"Option A", "Option B"}, Rows: []ComparisonRow{{Values: []string{"", ""}}}}
	}},
	TypePricing: {"Pricing", CategoryStructured, func() Payload {
		return &PricingData{Plans: []PricingPlan{{Name: "Basic", Period: "month", Features: []string{}, CTA: "Get started"}}}
	}},
	TypeTestimonial: {"Testimonial", CategoryStructured, func() Payload { return &TestimonialData{Rating: 5} }},
	TypeTeam:        {"Team", CategoryStructured, func() Payload { return &TeamData{Members: []TeamMember{{}}} }},
	TypeStats:       {"Stats", CategoryStructured, func() Payload { return &StatsData{Items: []StatItem{{}}} }},
	TypeProgress:    {"Progress", CategoryStructured, func() Payload { return &ProgressData{Items: []ProgressItem{{Value: 50}}} }},
	TypeAlert:       {"Alert", CategoryStructured, func() Payload { return &AlertData{Intent: IntentInfo} }},
	TypeCard:        {"Card", CategoryStructured, func() Payload { return &CardData{} }},

	TypeSocialShare: {"Social Share", CategoryEngagement, func() Payload {
		return &SocialShareData{Platforms: []string{"twitter", "facebook", "linkedin"}}
	}},
	TypeRelatedArticles: {"Related Articles", CategoryEngagement, func() Payload {
		return &RelatedArticlesData{ArticleIDs: []string{}, Limit: 3}
	}},
	TypeAuthorBox: {"Author Box", CategoryEngagement, func() Payload { return &AuthorBoxData{} }},
	TypeNewsletterCTA: {"Newsletter CTA", CategoryEngagement, func() Payload {
		return &NewsletterData{ButtonText: "Subscribe", Placeholder: "you@example.com"}
	}},

	TypeMap:            {"Map", CategorySpecialized, func() Payload { return &MapData{Zoom: 12} }},
	TypeMathExpression: {"Math Expression", CategorySpecialized, func() Payload { return &MathData{DisplayMode: true} }},
	TypeDiagram:        {"Diagram", CategorySpecialized, func() Payload { return &DiagramData{Syntax: "mermaid"} }},
}

// Types returns every known variant in picker order.
func Types() []Type {
	out := make([]Type, len(order))
	copy(out, order)
	return out
}

// IsKnown reports whether t belongs to the closed variant set.
func IsKnown(t Type) bool {
	_, ok := registry[t]
	return ok
}

// LabelFor returns the display name of a variant.
func LabelFor(t Type) string {
	if v, ok := registry[t]; ok {
		return v.label
	}
	return "Unknown block"
}

// CategoryOf returns the picker category of a variant.
func CategoryOf(t Type) (Category, bool) {
	v, ok := registry[t]
	return v.category, ok
}

// DefaultData returns a fresh default payload for t. Unknown types get an
// empty *RawData so they can still be carried through persistence.
func DefaultData(t Type) Payload {
	v, ok := registry[t]
	if !ok {
		return &RawData{Tag: t}
	}
	return v.defaults()
}
