// Package variables finds bracketed placeholders such as [tone] in prompt
// text and substitutes user-supplied values for them.
package variables

import (
	"regexp"
	"strings"
	"unicode"
)

// tokenRe matches a placeholder: letters, digits, underscore or whitespace
// between a single pair of brackets. The first ']' always closes the token.
// Whitespace is the browser's notion of it: RE2's \s plus \v, Unicode space
// separators (NBSP, U+3000), the BOM and the line/paragraph separators.
var tokenRe = regexp.MustCompile(`\[([a-zA-Z0-9_\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]+)\]`)

// trimName strips the same whitespace tokenRe accepts from both ends.
func trimName(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// Segment types produced by Segments.
const (
	TypeText     = "text"
	TypeFilled   = "filled"
	TypeUnfilled = "unfilled"
)

// Segment is one contiguous piece of a rendered prompt.
type Segment struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Extract returns the distinct variable names in text, trimmed, in order of
// first appearance.
func Extract(text string) []string {
	names := []string{}
	seen := make(map[string]bool)
	for _, m := range tokenRe.FindAllStringSubmatch(text, -1) {
		name := trimName(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Resolve replaces every placeholder whose name has a non-empty value.
// Placeholders without a value, or with an empty one, are left as written.
// Substituted values are not scanned again.
func Resolve(text string, values map[string]string) string {
	var b strings.Builder
	for _, seg := range Segments(text, values) {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Segments splits text into plain, filled and unfilled pieces covering the
// whole input in order.
func Segments(text string, values map[string]string) []Segment {
	segs := []Segment{}
	last := 0
	for _, loc := range tokenRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > last {
			segs = append(segs, Segment{Text: text[last:start], Type: TypeText})
		}
		name := trimName(text[loc[2]:loc[3]])
		if v, ok := lookup(values, name); ok {
			segs = append(segs, Segment{Text: v, Type: TypeFilled})
		} else {
			segs = append(segs, Segment{Text: text[start:end], Type: TypeUnfilled})
		}
		last = end
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:], Type: TypeText})
	}
	return segs
}

// Missing returns the variables of text that have no usable value.
func Missing(text string, values map[string]string) []string {
	missing := []string{}
	for _, name := range Extract(text) {
		if _, ok := lookup(values, name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// lookup treats an empty value the same as an absent one.
func lookup(values map[string]string, name string) (string, bool) {
	v, ok := values[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
