package render

import "strings"

// Marker is the parsed form of a body's metadata block: the sole
// identity signal the engine trusts during discovery.
type Marker struct {
	PlanID   string
	ItemID   string
	ItemType string
	ParentID string
}

// ParseMarker scans body for the metadata block between markerSentinel
// and markerEnd and parses its KEY:VALUE lines. It returns ok=false if
// no well-formed block is found; callers must treat that as "not one of
// ours" rather than an error, per §4.6 phase 1 ("items whose parse
// fails ... are ignored").
func ParseMarker(body string) (Marker, bool) {
	lines := strings.Split(body, "\n")

	start := -1
	end := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == markerSentinel {
			start = i
			continue
		}
		if start != -1 && trimmed == markerEnd {
			end = i
			break
		}
	}
	if start == -1 || end == -1 {
		return Marker{}, false
	}

	var m Marker
	for _, line := range lines[start+1 : end] {
		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		switch key {
		case "PLAN_ID":
			m.PlanID = value
		case "ITEM_ID":
			m.ItemID = value
		case "ITEM_TYPE":
			m.ItemType = value
		case "PARENT_ID":
			m.ParentID = value
		}
	}

	if m.PlanID == "" || m.ItemID == "" {
		return Marker{}, false
	}
	return m, true
}

func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}
