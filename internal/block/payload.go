package block

// Payload is the typed, variant-specific part of a block. The set of
// implementations is closed: every variant has exactly one payload type.
type Payload interface {
	Kind() Type
	extension() *Ext
}

// Ext keeps blockData attributes that the payload type does not know
// about, so they survive a decode/encode round trip.
type Ext struct {
	Extra map[string]any `json:"-"`
}

func (e *Ext) extension() *Ext { return e }

type normalizer interface {
	normalize()
}

type HeadingLevel string

const (
	HeadingH2 HeadingLevel = "h2"
	HeadingH3 HeadingLevel = "h3"
	HeadingH4 HeadingLevel = "h4"
)

type ListStyle string

const (
	ListBullet   ListStyle = "bullet"
	ListNumbered ListStyle = "numbered"
)

type Intent string

const (
	IntentInfo    Intent = "info"
	IntentSuccess Intent = "success"
	IntentWarning Intent = "warning"
	IntentError   Intent = "error"
	IntentTip     Intent = "tip"
	IntentNeutral Intent = "neutral"
)

// Intents lists the alert intents in declaration order; the first one is the default.
var Intents = []Intent{IntentInfo, IntentSuccess, IntentWarning, IntentError, IntentTip, IntentNeutral}

// Languages lists the code languages offered for display hinting.
var Languages = []string{"javascript", "typescript", "python", "go", "html", "css", "json", "bash", "sql", "plaintext"}

type ParagraphData struct {
	Ext
	Align string `json:"align"`
}

type HeadingData struct {
	Ext
	Level HeadingLevel `json:"headingLevel"`
}

type QuoteData struct {
	Ext
	Style string `json:"style"`
}

type ListData struct {
	Ext
	Style ListStyle `json:"listStyle"`
}

type CodeData struct {
	Ext
	Language string `json:"language"`
}

type DividerData struct {
	Ext
	Style string `json:"style"`
}

type EmbedData struct {
	Ext
	URL      string `json:"url"`
	Provider string `json:"provider"`
	EmbedID  string `json:"embedId"`
}

type LinkPreviewData struct {
	Ext
	URL         string `json:"url"`
	Description string `json:"description"`
	SiteName    string `json:"siteName"`
}

type TableData struct {
	Ext
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type ButtonData struct {
	Ext
	URL          string `json:"url"`
	Variant      string `json:"variant"`
	OpenInNewTab bool   `json:"openInNewTab"`
}

// GalleryData keeps image URLs and captions as parallel arrays.
type GalleryData struct {
	Ext
	Images   []string `json:"images"`
	Captions []string `json:"captions"`
	Columns  int      `json:"columns"`
}

type AccordionItem struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type AccordionData struct {
	Ext
	Items []AccordionItem `json:"items"`
}

type ToggleData struct {
	Ext
	Open bool `json:"open"`
}

type Tab struct {
	Label string `json:"label"`
	Body  string `json:"body"`
}

type TabsData struct {
	Ext
	Tabs []Tab `json:"tabs"`
}

type SpoilerData struct {
	Ext
	Label string `json:"label"`
}

type ColumnsData struct {
	Ext
	Columns []string `json:"columns"`
}

type ImageData struct {
	Ext
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
	Width   string `json:"width"`
}

type VideoData struct {
	Ext
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type AudioData struct {
	Ext
	URL string `json:"url"`
}

type FileData struct {
	Ext
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

type PDFData struct {
	Ext
	URL    string `json:"url"`
	Height int    `json:"height"`
}

type TimelineEvent struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type TimelineData struct {
	Ext
	Events []TimelineEvent `json:"events"`
}

type ComparisonRow struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// ComparisonData keeps one value per column in every row.
type ComparisonData struct {
	Ext
	Columns []string        `json:"columns"`
	Rows    []ComparisonRow `json:"rows"`
}

type PricingPlan struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Period      string   `json:"period"`
	Features    []string `json:"features"`
	Highlighted bool     `json:"highlighted"`
	CTA         string   `json:"cta"`
}

type PricingData struct {
	Ext
	Plans []PricingPlan `json:"plans"`
}

type TestimonialData struct {
	Ext
	Role    string `json:"role"`
	Company string `json:"company"`
	Rating  int    `json:"rating"`
}

type TeamMember struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photoUrl"`
}

type TeamData struct {
	Ext
	Members []TeamMember `json:"members"`
}

type StatItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type StatsData struct {
	Ext
	Items []StatItem `json:"items"`
}

type ProgressItem struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type ProgressData struct {
	Ext
	Items []ProgressItem `json:"items"`
}

type AlertData struct {
	Ext
	Intent Intent `json:"intent"`
}

type CardData struct {
	Ext
	URL        string `json:"url"`
	ButtonText string `json:"buttonText"`
}

type SocialShareData struct {
	Ext
	Platforms []string `json:"platforms"`
}

type RelatedArticlesData struct {
	Ext
	ArticleIDs []string `json:"articleIds"`
	Limit      int      `json:"limit"`
}

type AuthorBoxData struct {
	Ext
	AuthorRef string `json:"authorRef"`
	SocialURL string `json:"socialUrl"`
}

type NewsletterData struct {
	Ext
	ButtonText  string `json:"buttonText"`
	Placeholder string `json:"placeholder"`
}

type MapData struct {
	Ext
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
	Address   string  `json:"address"`
}

type MathData struct {
	Ext
	DisplayMode bool `json:"displayMode"`
}

type DiagramData struct {
	Ext
	Syntax string `json:"syntax"`
}

// RawData carries the payload of a block whose type is not part of the
// closed set. Everything lives in Extra.
type RawData struct {
	Ext
	Tag Type `json:"-"`
}

func (*ParagraphData) Kind() Type       { return TypeParagraph }
func (*HeadingData) Kind() Type         { return TypeHeading }
func (*QuoteData) Kind() Type           { return TypeQuote }
func (*ListData) Kind() Type            { return TypeList }
func (*CodeData) Kind() Type            { return TypeCode }
func (*DividerData) Kind() Type         { return TypeDivider }
func (*EmbedData) Kind() Type           { return TypeEmbed }
func (*LinkPreviewData) Kind() Type     { return TypeLinkPreview }
func (*TableData) Kind() Type           { return TypeTable }
func (*ButtonData) Kind() Type          { return TypeButton }
func (*GalleryData) Kind() Type         { return TypeGallery }
func (*AccordionData) Kind() Type       { return TypeAccordion }
func (*ToggleData) Kind() Type          { return TypeToggle }
func (*TabsData) Kind() Type            { return TypeTabs }
func (*SpoilerData) Kind() Type         { return TypeSpoiler }
func (*ColumnsData) Kind() Type         { return TypeColumns }
func (*ImageData) Kind() Type           { return TypeImage }
func (*VideoData) Kind() Type           { return TypeVideo }
func (*AudioData) Kind() Type           { return TypeAudio }
func (*FileData) Kind() Type            { return TypeFile }
func (*PDFData) Kind() Type             { return TypePDF }
func (*TimelineData) Kind() Type        { return TypeTimeline }
func (*ComparisonData) Kind() Type      { return TypeComparison }
func (*PricingData) Kind() Type         { return TypePricing }
func (*TestimonialData) Kind() Type     { return TypeTestimonial }
func (*TeamData) Kind() Type            { return TypeTeam }
func (*StatsData) Kind() Type           { return TypeStats }
func (*ProgressData) Kind() Type        { return TypeProgress }
func (*AlertData) Kind() Type           { return TypeAlert }
func (*CardData) Kind() Type            { return TypeCard }
func (*SocialShareData) Kind() Type     { return TypeSocialShare }
func (*RelatedArticlesData) Kind() Type { return TypeRelatedArticles }
func (*AuthorBoxData) Kind() Type       { return TypeAuthorBox }
func (*NewsletterData) Kind() Type      { return TypeNewsletterCTA }
func (*MapData) Kind() Type             { return TypeMap }
func (*MathData) Kind() Type            { return TypeMathExpression }
func (*DiagramData) Kind() Type         { return TypeDiagram }
func (r *RawData) Kind() Type           { return r.Tag }
