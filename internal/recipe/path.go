package recipe

import (
	"strconv"
	"strings"
)

// fieldPath is the location of a value inside the decoded payload.
// Segments are appended as the decoder descends and only rendered on failure.
type fieldPath []pathSegment

type pathSegment struct {
	key   string
	index int
}

func (p fieldPath) key(k string) fieldPath {
	return append(p[:len(p):len(p)], pathSegment{key: k, index: -1})
}

func (p fieldPath) index(i int) fieldPath {
	return append(p[:len(p):len(p)], pathSegment{index: i})
}

// String renders the path as `recipeInstructions[1].text`; the root is ".".
func (p fieldPath) String() string {
	if len(p) == 0 {
		return "."
	}
	var sb strings.Builder
	for i, seg := range p {
		if seg.index >= 0 {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(seg.index))
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.key)
	}
	return sb.String()
}
