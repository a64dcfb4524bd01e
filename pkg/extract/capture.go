package extract

import (
	"regexp"
	"strings"
)

var (
	richOpenTag = regexp.MustCompile(`(?is)<([a-z][a-z0-9-]*)\b[^>]*\bdata-daas-type\s*=\s*["']richtext["'][^>]*>`)
	keyInTag    = regexp.MustCompile(`(?is)\bdata-daas-key\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// captureRichText returns the raw inner markup of every element declared as
// richtext, keyed by the first key of the element. Reading the source before
// the parser normalises it keeps editor markup byte-for-byte.
func captureRichText(src string) map[string]string {
	out := map[string]string{}
	for _, loc := range richOpenTag.FindAllStringSubmatchIndex(src, -1) {
		tag := src[loc[0]:loc[1]]
		km := keyInTag.FindStringSubmatch(tag)
		if km == nil {
			continue
		}
		key := km[1]
		if key == "" {
			key = km[2]
		}
		if comma := strings.IndexByte(key, ','); comma >= 0 {
			key = key[:comma]
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, seen := out[key]; seen {
			continue
		}
		name := strings.ToLower(src[loc[2]:loc[3]])
		if inner, ok := innerMarkup(src, loc[1], name); ok {
			out[key] = inner
		}
	}
	return out
}

// innerMarkup scans from offset (just past an opening tag) to the matching
// closing tag of name, counting nested elements of the same name.
func innerMarkup(src string, offset int, name string) (string, bool) {
	lower := asciiLower(src)
	open := "<" + name
	closing := "</" + name
	depth := 1
	pos := offset
	for pos < len(src) {
		next := strings.IndexByte(lower[pos:], '<')
		if next < 0 {
			return "", false
		}
		pos += next
		switch {
		case strings.HasPrefix(lower[pos:], closing) && tagBoundary(lower, pos+len(closing)):
			depth--
			if depth == 0 {
				return src[offset:pos], true
			}
			pos += len(closing)
		case strings.HasPrefix(lower[pos:], open) && tagBoundary(lower, pos+len(open)):
			end := strings.IndexByte(lower[pos:], '>')
			if end < 0 {
				return "", false
			}
			if lower[pos+end-1] != '/' {
				depth++
			}
			pos += end + 1
		case strings.HasPrefix(lower[pos:], "<!--"):
			end := strings.Index(lower[pos:], "-->")
			if end < 0 {
				return "", false
			}
			pos += end + 3
		default:
			pos++
		}
	}
	return "", false
}

func tagBoundary(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	switch s[i] {
	case ' ', '\t', '\n', '\r', '\f', '>', '/':
		return true
	}
	return false
}

// asciiLower folds ASCII letters only so byte offsets stay aligned with src.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
