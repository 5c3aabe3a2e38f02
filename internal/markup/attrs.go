package markup

import (
	"regexp"
	"strings"
)

// Attr is one name/value pair of a tag. Attrs preserves order, which keeps
// a parse/rebuild cycle byte-stable.
type Attr struct {
	Name  string
	Value string
}

type Attrs []Attr

var attrPattern = regexp.MustCompile(`([a-zA-Z_][\w:.-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// ParseAttrs extracts the attributes from a tag's source text (the span from
// '<' to the closing '>'). Both quote styles are accepted; when the same name
// appears twice the last value wins but the first position is kept. Values
// are entity-decoded so they round-trip through BuildTag.
func ParseAttrs(tag string) Attrs {
	var attrs Attrs
	index := make(map[string]int)

	for _, m := range attrPattern.FindAllStringSubmatch(tag, -1) {
		name := m[1]
		value := m[2]
		if value == "" && m[3] != "" {
			value = m[3]
		}
		value = UnescapeAttr(value)

		if at, seen := index[name]; seen {
			attrs[at].Value = value
			continue
		}
		index[name] = len(attrs)
		attrs = append(attrs, Attr{Name: name, Value: value})
	}

	return attrs
}

// Get returns the value of the named attribute.
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Merge overlays existing attributes onto the desired set: every desired
// attribute keeps its value and position, and any existing attribute whose
// name is not claimed by the desired set is appended unchanged. Nothing the
// markup already carried is dropped.
func Merge(desired, existing Attrs) Attrs {
	merged := make(Attrs, len(desired), len(desired)+len(existing))
	copy(merged, desired)

	claimed := make(map[string]bool, len(desired))
	for _, attr := range desired {
		claimed[attr.Name] = true
	}

	for _, attr := range existing {
		if !claimed[attr.Name] {
			merged = append(merged, attr)
		}
	}

	return merged
}

// BuildTag renders an opening tag with double-quoted, escaped values.
func BuildTag(name string, attrs Attrs) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	for _, attr := range attrs {
		b.WriteByte(' ')
		b.WriteString(attr.Name)
		b.WriteString(`="`)
		b.WriteString(EscapeAttr(attr.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	attrUnescaper = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&amp;", "&",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
)

// EscapeAttr escapes a string for embedding inside a quoted attribute value.
func EscapeAttr(s string) string { return attrEscaper.Replace(s) }

// UnescapeAttr reverses EscapeAttr.
func UnescapeAttr(s string) string { return attrUnescaper.Replace(s) }

// EscapeText escapes a string for embedding as element text.
func EscapeText(s string) string { return textEscaper.Replace(s) }
