package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"inkwell/api/internal/block"
)

var (
	ErrUnknownPath   = errors.New("unknown field path")
	ErrUnsupportedOp = errors.New("operation not supported by block type")
	ErrInvalidValue  = errors.New("invalid field value")
)

// Op names a structural edit on a block's repeated data.
type Op string

const (
	OpAddColumn    Op = "addColumn"
	OpRemoveColumn Op = "removeColumn"
	OpAddRow       Op = "addRow"
	OpRemoveRow    Op = "removeRow"
	OpAddItem      Op = "addItem"
	OpRemoveItem   Op = "removeItem"
)

// Change is what an edit form reports back: either a field write (Path,
// Value) or a structural operation (Op, Index, and Value as a label).
type Change struct {
	Path  string `json:"path,omitempty"`
	Value any    `json:"value,omitempty"`
	Op    Op     `json:"op,omitempty"`
	Index int    `json:"index,omitempty"`
}

// Apply returns b with the change applied. b itself is left untouched.
func Apply(b block.Block, c Change) (block.Block, error) {
	if c.Op != "" {
		return applyOp(b, c)
	}
	switch c.Path {
	case "content", "heading", "imageUrl":
		s, ok := c.Value.(string)
		if !ok {
			return b, fmt.Errorf("%s: %w", c.Path, ErrInvalidValue)
		}
		switch c.Path {
		case "content":
			b.Content = s
		case "heading":
			b.Heading = s
		default:
			b.ImageURL = s
		}
		return b, nil
	}

	rest, ok := strings.CutPrefix(c.Path, "blockData.")
	if !ok || rest == "" {
		return b, fmt.Errorf("%q: %w", c.Path, ErrUnknownPath)
	}
	data, err := deepCopy(b.BlockData())
	if err != nil {
		return b, err
	}
	next, err := setPath(data, strings.Split(rest, "."), c.Value)
	if err != nil {
		return b, fmt.Errorf("%q: %w", c.Path, err)
	}
	m, _ := next.(map[string]any)
	b.Data = block.DecodeData(b.Type, m)
	if d, ok := b.Data.(*block.EmbedData); ok {
		resolveEmbed(d)
	}
	return b, nil
}

func applyOp(b block.Block, c Change) (block.Block, error) {
	label, _ := c.Value.(string)
	var out block.Payload
	switch d := b.Payload().(type) {
	case *block.TableData:
		switch c.Op {
		case OpAddColumn:
			out = d.AddColumn(label)
		case OpRemoveColumn:
			out = d.RemoveColumn(c.Index)
		case OpAddRow, OpAddItem:
			out = d.AddRow()
		case OpRemoveRow, OpRemoveItem:
			out = d.RemoveRow(c.Index)
		}
	case *block.ComparisonData:
		switch c.Op {
		case OpAddColumn:
			out = d.AddColumn(label)
		case OpRemoveColumn:
			out = d.RemoveColumn(c.Index)
		case OpAddRow, OpAddItem:
			out = d.AddRow(label)
		case OpRemoveRow, OpRemoveItem:
			out = d.RemoveRow(c.Index)
		}
	default:
		var ok bool
		switch c.Op {
		case OpAddItem:
			out, ok = block.AddItem(d)
		case OpRemoveItem:
			out, ok = block.RemoveItem(d, c.Index)
		}
		if !ok {
			out = nil
		}
	}
	if out == nil {
		return b, fmt.Errorf("%s on %s: %w", c.Op, b.Type, ErrUnsupportedOp)
	}
	return b.WithData(out), nil
}

func setPath(node any, segs []string, value any) (any, error) {
	if len(segs) == 0 {
		return coerce(node, value)
	}
	switch n := node.(type) {
	case map[string]any:
		child, exists := n[segs[0]]
		if !exists && len(segs) > 1 {
			return nil, ErrUnknownPath
		}
		next, err := setPath(child, segs[1:], value)
		if err != nil {
			return nil, err
		}
		n[segs[0]] = next
		return n, nil
	case []any:
		i, err := strconv.Atoi(segs[0])
		if err != nil || i < 0 || i >= len(n) {
			return nil, ErrUnknownPath
		}
		next, err := setPath(n[i], segs[1:], value)
		if err != nil {
			return nil, err
		}
		n[i] = next
		return n, nil
	default:
		return nil, ErrUnknownPath
	}
}

// coerce converts form values (always strings from HTML controls) to the
// shape of the value they replace.
func coerce(old, value any) (any, error) {
	s, isString := value.(string)
	switch old.(type) {
	case float64:
		if !isString {
			return value, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, ErrInvalidValue
		}
		return f, nil
	case bool:
		if !isString {
			return value, nil
		}
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, ErrInvalidValue
		}
		return v, nil
	case []any:
		if isString {
			var out []any
			for _, part := range strings.Split(s, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
			return out, nil
		}
	}
	return value, nil
}

func deepCopy(m map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("copy block data: %w", err)
	}
	out := make(map[string]any)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("copy block data: %w", err)
	}
	return out, nil
}
