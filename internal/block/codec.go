package block

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// DecodeData interprets an open blockData map with the schema of t. Keys
// the payload does not declare go to Extra; values of the wrong shape keep
// the variant default. Decoding never fails.
func DecodeData(t Type, data map[string]any) Payload {
	p := DefaultData(t)
	if raw, ok := p.(*RawData); ok {
		raw.Extra = copyMap(data)
		return raw
	}
	if c, ok := p.(*ComparisonData); ok {
		// rows sent without columns size the columns themselves
		if _, given := data["columns"]; !given && data["rows"] != nil {
			c.Columns = nil
		}
	}
	known := knownKeys(p)
	for key, value := range data {
		if _, ok := known[key]; !ok {
			ext := p.extension()
			if ext.Extra == nil {
				ext.Extra = make(map[string]any)
			}
			ext.Extra[key] = value
			continue
		}
		encoded, err := json.Marshal(map[string]any{key: value})
		if err != nil {
			continue
		}
		_ = json.Unmarshal(encoded, p)
	}
	if n, ok := p.(normalizer); ok {
		n.normalize()
	}
	return p
}

// EncodeData turns a payload back into the open map form. Declared fields
// take precedence over Extra entries with the same key.
func EncodeData(p Payload) map[string]any {
	out := make(map[string]any)
	if p == nil {
		return out
	}
	if encoded, err := json.Marshal(p); err == nil {
		_ = json.Unmarshal(encoded, &out)
	}
	for key, value := range p.extension().Extra {
		if _, exists := out[key]; !exists {
			out[key] = value
		}
	}
	return out
}

// Clone returns a deep copy of p.
func Clone(p Payload) Payload {
	if p == nil {
		return nil
	}
	return DecodeData(p.Kind(), EncodeData(p))
}

var knownKeyCache sync.Map

func knownKeys(p Payload) map[string]struct{} {
	rt := reflect.TypeOf(p).Elem()
	if cached, ok := knownKeyCache.Load(rt); ok {
		return cached.(map[string]struct{})
	}
	keys := make(map[string]struct{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	knownKeyCache.Store(rt, keys)
	return keys
}

func copyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func oneOf(value string, allowed []string, fallback string) string {
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	return fallback
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func fit(values []string, width int) []string {
	out := make([]string, width)
	copy(out, values)
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (d *ParagraphData) normalize() {
	d.Align = oneOf(d.Align, []string{"left", "center", "right", "justify"}, "left")
}

func (d *HeadingData) normalize() {
	switch d.Level {
	case HeadingH2, HeadingH3, HeadingH4:
	default:
		d.Level = HeadingH2
	}
}

func (d *QuoteData) normalize() {
	d.Style = oneOf(d.Style, []string{"default", "pull", "bordered"}, "default")
}

func (d *ListData) normalize() {
	if d.Style != ListNumbered {
		d.Style = ListBullet
	}
}

func (d *CodeData) normalize() {
	d.Language = oneOf(d.Language, Languages, "plaintext")
}

func (d *DividerData) normalize() {
	d.Style = oneOf(d.Style, []string{"solid", "dashed", "dotted"}, "solid")
}

func (d *ButtonData) normalize() {
	d.Variant = oneOf(d.Variant, []string{"primary", "secondary", "outline"}, "primary")
}

func (d *TableData) normalize() {
	d.Headers = nonNil(d.Headers)
	d.Rows = nonNil(d.Rows)
	width := len(d.Headers)
	if width == 0 {
		for _, row := range d.Rows {
			width = max(width, len(row))
		}
		d.Headers = fit(nil, width)
	}
	for i, row := range d.Rows {
		d.Rows[i] = fit(row, width)
	}
}

func (d *GalleryData) normalize() {
	d.Images = nonNil(d.Images)
	d.Captions = fit(d.Captions, len(d.Images))
	if d.Columns < 1 || d.Columns > 6 {
		d.Columns = 3
	}
}

func (d *AccordionData) normalize() { d.Items = nonNil(d.Items) }
func (d *TabsData) normalize()      { d.Tabs = nonNil(d.Tabs) }
func (d *ColumnsData) normalize()   { d.Columns = nonNil(d.Columns) }
func (d *TimelineData) normalize()  { d.Events = nonNil(d.Events) }
func (d *TeamData) normalize()      { d.Members = nonNil(d.Members) }
func (d *StatsData) normalize()     { d.Items = nonNil(d.Items) }

func (d *PDFData) normalize() {
	if d.Height <= 0 {
		d.Height = 600
	}
}

func (d *ComparisonData) normalize() {
	d.Columns = nonNil(d.Columns)
	d.Rows = nonNil(d.Rows)
	width := len(d.Columns)
	if width == 0 {
		for _, row := range d.Rows {
			width = max(width, len(row.Values))
		}
		d.Columns = fit(nil, width)
	}
	for i := range d.Rows {
		d.Rows[i].Values = fit(d.Rows[i].Values, width)
	}
}

func (d *PricingData) normalize() {
	d.Plans = nonNil(d.Plans)
	for i := range d.Plans {
		d.Plans[i].Features = nonNil(d.Plans[i].Features)
	}
}

func (d *TestimonialData) normalize() {
	if d.Rating < 1 || d.Rating > 5 {
		d.Rating = 5
	}
}

func (d *ProgressData) normalize() {
	d.Items = nonNil(d.Items)
	for i := range d.Items {
		d.Items[i].Value = clamp(d.Items[i].Value, 0, 100)
	}
}

func (d *AlertData) normalize() {
	for _, intent := range Intents {
		if d.Intent == intent {
			return
		}
	}
	d.Intent = Intents[0]
}

func (d *SocialShareData) normalize() { d.Platforms = nonNil(d.Platforms) }

func (d *RelatedArticlesData) normalize() {
	d.ArticleIDs = nonNil(d.ArticleIDs)
	if d.Limit <= 0 {
		d.Limit = 3
	}
}

func (d *MapData) normalize() {
	if d.Zoom < 1 || d.Zoom > 20 {
		d.Zoom = 12
	}
}
