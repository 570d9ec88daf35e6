package markup

import (
	"strings"
	"unicode/utf8"
)

// ValidName reports whether name can be written as an element or attribute name.
// Names follow the XML 1.0 Name production without colons, since the writer
// never declares namespaces. Names starting with "xml" in any case are reserved.
func ValidName(name string) bool {
	if name == "" || !utf8.ValidString(name) {
		return false
	}
	if len(name) >= 3 && strings.EqualFold(name[:3], "xml") {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !isNameStartChar(r) {
				return false
			}
			continue
		}
		if !isNameChar(r) {
			return false
		}
	}
	return true
}

func isNameStartChar(r rune) bool {
	switch {
	case r == '_',
		'A' <= r && r <= 'Z',
		'a' <= r && r <= 'z',
		0xC0 <= r && r <= 0xD6,
		0xD8 <= r && r <= 0xF6,
		0xF8 <= r && r <= 0x2FF,
		0x370 <= r && r <= 0x37D,
		0x37F <= r && r <= 0x1FFF,
		0x200C <= r && r <= 0x200D,
		0x2070 <= r && r <= 0x218F,
		0x2C00 <= r && r <= 0x2FEF,
		0x3001 <= r && r <= 0xD7FF,
		0xF900 <= r && r <= 0xFDCF,
		0xFDF0 <= r && r <= 0xFFFD,
		0x10000 <= r && r <= 0xEFFFF:
		return true
	}
	return false
}

func isNameChar(r rune) bool {
	switch {
	case isNameStartChar(r),
		r == '-', r == '.',
		'0' <= r && r <= '9',
		r == 0xB7,
		0x300 <= r && r <= 0x36F,
		0x203F <= r && r <= 0x2040:
		return true
	}
	return false
}
