package platform

import (
	"fmt"
	"strconv"
	"strings"
)

const edidHeader = "00ffffffffffff00"

// ParseMonitors parses xrandr --props output into connected monitors.
//
// The hardware id is taken from the manufacturer/product bytes that follow
// the fixed EDID header on the first EDID line. Connected outputs without an
// active mode (no WxH+X+Y token) are skipped.
func ParseMonitors(out string) ([]Monitor, error) {
	var (
		monitors     []Monitor
		connector    string
		geometry     string
		awaitMarker  bool
		awaitPayload bool
	)

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if len(fields) > 2 && fields[1] == "connected" {
			connector = fields[0]
			geometry = fields[2]
			if fields[2] == "primary" && len(fields) > 3 {
				geometry = fields[3]
			}
			awaitMarker = true
			awaitPayload = false
			continue
		}

		switch {
		case awaitMarker && fields[0] == "EDID:":
			awaitMarker = false
			awaitPayload = true
		case awaitPayload:
			awaitPayload = false
			payload := fields[0]
			if len(payload) < 20 || payload[:16] != edidHeader {
				return nil, &ParseError{Command: "xrandr --props", Line: line, Msg: fmt.Sprintf("EDID for %s corrupted", connector)}
			}
			mon, ok := parseMonitorGeometry(geometry)
			if !ok {
				continue
			}
			mon.Connector = connector
			mon.HardwareID = payload[16:20]
			monitors = append(monitors, mon)
		}
	}
	return monitors, nil
}

// parseMonitorGeometry parses "WxH+X+Y".
func parseMonitorGeometry(s string) (Monitor, bool) {
	size, offset, ok := strings.Cut(s, "+")
	if !ok {
		return Monitor{}, false
	}
	width, height, err := parseSize(size)
	if err != nil {
		return Monitor{}, false
	}
	xs, ys, ok := strings.Cut(offset, "+")
	if !ok {
		return Monitor{}, false
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Monitor{}, false
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Monitor{}, false
	}
	return Monitor{Width: width, Height: height, OffsetX: x, OffsetY: y}, true
}
