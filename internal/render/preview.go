package render

import (
	"fmt"
	"strings"

	"inkwell/api/internal/block"
)

// Device is a simulated viewport for the editor preview.
type Device string

const (
	Desktop Device = "desktop"
	Tablet  Device = "tablet"
	Mobile  Device = "mobile"
)

var deviceWidth = map[Device]string{
	Desktop: "100%",
	Tablet:  "768px",
	Mobile:  "375px",
}

// ParseDevice maps a query value to a Device; anything unknown is Desktop.
func ParseDevice(s string) Device {
	d := Device(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := deviceWidth[d]; ok {
		return d
	}
	return Desktop
}

// Width returns the CSS width of the simulated viewport.
func (d Device) Width() string {
	if w, ok := deviceWidth[d]; ok {
		return w
	}
	return deviceWidth[Desktop]
}

// Preview renders blocks in display context inside a frame sized for
// device. Only layout changes with the device.
func Preview(blocks []block.Block, device Device) string {
	return fmt.Sprintf("<div class=\"preview preview-%s\" style=\"max-width: %s; margin: 0 auto\">\n%s</div>\n",
		ParseDevice(string(device)), device.Width(), DisplayAll(blocks))
}
