// Package block defines the closed set of article content units, their
// typed payloads and the registry that builds default blocks.
package block

import (
	"encoding/json"
	"fmt"

	"inkwell/api/internal/util"
)

// Type is the variant tag of a block.
type Type string

// Category groups variants in the block picker.
type Category string

const (
	CategoryBasic       Category = "basic"
	CategoryInteractive Category = "interactive"
	CategoryMedia       Category = "media"
	CategoryStructured  Category = "structured"
	CategoryEngagement  Category = "engagement"
	CategorySpecialized Category = "specialized"
)

const (
	TypeParagraph       Type = "paragraph"
	TypeHeading         Type = "heading"
	TypeQuote           Type = "quote"
	TypeList            Type = "list"
	TypeCode            Type = "code"
	TypeDivider         Type = "divider"
	TypeEmbed           Type = "embed"
	TypeLinkPreview     Type = "link-preview"
	TypeTable           Type = "table"
	TypeButton          Type = "button"
	TypeGallery         Type = "gallery"
	TypeAccordion       Type = "accordion"
	TypeToggle          Type = "toggle"
	TypeTabs            Type = "tabs"
	TypeSpoiler         Type = "spoiler"
	TypeColumns         Type = "columns"
	TypeImage           Type = "image"
	TypeVideo           Type = "video"
	TypeAudio           Type = "audio"
	TypeFile            Type = "file"
	TypePDF             Type = "pdf"
	TypeTimeline        Type = "timeline"
	TypeComparison      Type = "comparison"
	TypePricing         Type = "pricing"
	TypeTestimonial     Type = "testimonial"
	TypeTeam            Type = "team"
	TypeStats           Type = "stats"
	TypeProgress        Type = "progress"
	TypeAlert           Type = "alert"
	TypeCard            Type = "card"
	TypeSocialShare     Type = "social-share"
	TypeRelatedArticles Type = "related-articles"
	TypeAuthorBox       Type = "author-box"
	TypeNewsletterCTA   Type = "newsletter-cta"
	TypeMap             Type = "map"
	TypeMathExpression  Type = "math-expression"
	TypeDiagram         Type = "diagram"
)

// Block is one content unit of an article body. Data always holds the
// payload matching Type; blocks of an unknown type carry *RawData.
type Block struct {
	ID       string
	Type     Type
	Content  string
	Heading  string
	ImageURL string
	Data     Payload
}

type wireBlock struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	Content   string         `json:"content"`
	Heading   string         `json:"heading,omitempty"`
	ImageURL  string         `json:"imageUrl,omitempty"`
	BlockData map[string]any `json:"blockData,omitempty"`
}

// New returns a block of the given type with a fresh id, empty content and
// the variant's default payload.
func New(t Type) Block {
	return Block{
		ID:   util.NewID("blk"),
		Type: t,
		Data: DefaultData(t),
	}
}

// Payload returns the block payload, falling back to the variant defaults
// when Data is missing or belongs to another variant.
func (b Block) Payload() Payload {
	if b.Data == nil || b.Data.Kind() != b.Type {
		return DefaultData(b.Type)
	}
	return b.Data
}

// BlockData encodes the payload into the open map persisted alongside the block.
func (b Block) BlockData() map[string]any {
	return EncodeData(b.Payload())
}

// WithData returns a copy of the block carrying p.
func (b Block) WithData(p Payload) Block {
	b.Data = p
	return b
}

func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireBlock{
		ID:        b.ID,
		Type:      b.Type,
		Content:   b.Content,
		Heading:   b.Heading,
		ImageURL:  b.ImageURL,
		BlockData: b.BlockData(),
	})
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var wire wireBlock
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode block: %w", err)
	}
	*b = Block{
		ID:       wire.ID,
		Type:     wire.Type,
		Content:  wire.Content,
		Heading:  wire.Heading,
		ImageURL: wire.ImageURL,
		Data:     DecodeData(wire.Type, wire.BlockData),
	}
	return nil
}
