package block

// Structural edits on payloads holding parallel arrays. Every operation
// works on a deep copy and returns it, leaving the receiver untouched so
// document snapshots stay comparable.

func (d *TableData) AddColumn(header string) *TableData {
	c := Clone(d).(*TableData)
	c.Headers = append(c.Headers, header)
	for i := range c.Rows {
		c.Rows[i] = append(c.Rows[i], "")
	}
	return c
}

// RemoveColumn drops column i from the headers and from every row. The last
// remaining column cannot be removed.
func (d *TableData) RemoveColumn(i int) *TableData {
	c := Clone(d).(*TableData)
	if i < 0 || i >= len(c.Headers) || len(c.Headers) <= 1 {
		return c
	}
	c.Headers = removeAt(c.Headers, i)
	for r := range c.Rows {
		if i < len(c.Rows[r]) {
			c.Rows[r] = removeAt(c.Rows[r], i)
		}
	}
	return c
}

func (d *TableData) AddRow() *TableData {
	c := Clone(d).(*TableData)
	c.Rows = append(c.Rows, make([]string, len(c.Headers)))
	return c
}

func (d *TableData) RemoveRow(i int) *TableData {
	c := Clone(d).(*TableData)
	if i < 0 || i >= len(c.Rows) || len(c.Rows) <= 1 {
		return c
	}
	c.Rows = removeAt(c.Rows, i)
	return c
}

func (d *ComparisonData) AddColumn(name string) *ComparisonData {
	c := Clone(d).(*ComparisonData)
	c.Columns = append(c.Columns, name)
	for i := range c.Rows {
		c.Rows[i].Values = append(c.Rows[i].Values, "")
	}
	return c
}

func (d *ComparisonData) RemoveColumn(i int) *ComparisonData {
	c := Clone(d).(*ComparisonData)
	if i < 0 || i >= len(c.Columns) || len(c.Columns) <= 1 {
		return c
	}
	c.Columns = removeAt(c.Columns, i)
	for r := range c.Rows {
		if i < len(c.Rows[r].Values) {
			c.Rows[r].Values = removeAt(c.Rows[r].Values, i)
		}
	}
	return c
}

func (d *ComparisonData) AddRow(label string) *ComparisonData {
	c := Clone(d).(*ComparisonData)
	c.Rows = append(c.Rows, ComparisonRow{Label: label, Values: make([]string, len(c.Columns))})
	return c
}

func (d *ComparisonData) RemoveRow(i int) *ComparisonData {
	c := Clone(d).(*ComparisonData)
	if i < 0 || i >= len(c.Rows) || len(c.Rows) <= 1 {
		return c
	}
	c.Rows = removeAt(c.Rows, i)
	return c
}

func (d *GalleryData) AddImage(url, caption string) *GalleryData {
	c := Clone(d).(*GalleryData)
	c.Images = append(c.Images, url)
	c.Captions = append(c.Captions, caption)
	return c
}

func (d *GalleryData) RemoveImage(i int) *GalleryData {
	c := Clone(d).(*GalleryData)
	if i < 0 || i >= len(c.Images) {
		return c
	}
	c.Images = removeAt(c.Images, i)
	c.Captions = removeAt(c.Captions, i)
	return c
}

// AddItem appends an empty entry to the repeated section of p (accordion
// items, tabs, timeline events, plans, members, stats, progress bars,
// columns, gallery slots, table and comparison rows). ok is false for
// payloads without a repeated section.
func AddItem(p Payload) (out Payload, ok bool) {
	switch d := p.(type) {
	case *TableData:
		return d.AddRow(), true
	case *ComparisonData:
		return d.AddRow(""), true
	case *GalleryData:
		return d.AddImage("", ""), true
	}
	c := Clone(p)
	switch d := c.(type) {
	case *AccordionData:
		d.Items = append(d.Items, AccordionItem{})
	case *TabsData:
		d.Tabs = append(d.Tabs, Tab{})
	case *ColumnsData:
		d.Columns = append(d.Columns, "")
	case *TimelineData:
		d.Events = append(d.Events, TimelineEvent{})
	case *PricingData:
		d.Plans = append(d.Plans, PricingPlan{Period: "month", Features: []string{}})
	case *TeamData:
		d.Members = append(d.Members, TeamMember{})
	case *StatsData:
		d.Items = append(d.Items, StatItem{})
	case *ProgressData:
		d.Items = append(d.Items, ProgressItem{})
	case *SocialShareData:
		d.Platforms = append(d.Platforms, "")
	default:
		return p, false
	}
	return c, true
}

// RemoveItem drops entry i of the repeated section of p. Out-of-range
// indexes leave the payload unchanged.
func RemoveItem(p Payload, i int) (out Payload, ok bool) {
	switch d := p.(type) {
	case *TableData:
		return d.RemoveRow(i), true
	case *ComparisonData:
		return d.RemoveRow(i), true
	case *GalleryData:
		return d.RemoveImage(i), true
	}
	c := Clone(p)
	switch d := c.(type) {
	case *AccordionData:
		d.Items = removeAt(d.Items, i)
	case *TabsData:
		d.Tabs = removeAt(d.Tabs, i)
	case *ColumnsData:
		d.Columns = removeAt(d.Columns, i)
	case *TimelineData:
		d.Events = removeAt(d.Events, i)
	case *PricingData:
		d.Plans = removeAt(d.Plans, i)
	case *TeamData:
		d.Members = removeAt(d.Members, i)
	case *StatsData:
		d.Items = removeAt(d.Items, i)
	case *ProgressData:
		d.Items = removeAt(d.Items, i)
	case *SocialShareData:
		d.Platforms = removeAt(d.Platforms, i)
	default:
		return p, false
	}
	return c, true
}

func removeAt[T any](s []T, i int) []T {
	if i < 0 || i >= len(s) {
		return s
	}
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
