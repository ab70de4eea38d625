package vision

import (
	"strings"
)

// ParseNameplate parses a model response of "key: value" lines. Unknown keys
// and lines without a colon are ignored; the first value seen for a key wins.
func ParseNameplate(raw string) *Nameplate {
	np := &Nameplate{Raw: raw}

	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		value = cleanValue(value)
		if value == "" {
			continue
		}

		var field *string
		switch normaliseKey(key) {
		case "manufacturer", "make", "brand":
			field = &np.Manufacturer
		case "model", "model number", "catalog number":
			field = &np.Model
		case "serial", "serial number", "s/n", "sn":
			field = &np.Serial
		case "manufactured", "date of manufacture", "manufacture date", "mfg date":
			field = &np.Manufactured
		default:
			continue
		}
		if *field == "" {
			*field = value
		}
	}

	return np
}

func normaliseKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.TrimLeft(key, "-*• ")
	return strings.Trim(key, "* ")
}

func cleanValue(v string) string {
	v = strings.TrimSpace(strings.Trim(strings.TrimSpace(v), "*`\""))
	switch strings.ToLower(v) {
	case "unknown", "n/a", "none", "not visible", "<name>":
		return ""
	}
	return v
}
