package token

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const (
	openMark  = "[["
	closeMark = "]]"
)

var (
	// valuePattern matches a value token. The key class includes brackets so
	// the quantifier must stay lazy, otherwise `[[a]][[b]]` collapses into a
	// single key.
	valuePattern = regexp.MustCompile(`\[\[([a-zA-Z0-9_.\[\]]+?)\]\]`)

	// encodedPattern matches a percent-encoded value token as produced by
	// encodeURIComponent (brackets encoded, dots and underscores untouched).
	encodedPattern = regexp.MustCompile(`%5[Bb]%5[Bb]((?:[a-zA-Z0-9_.]|%5[BbDd])+?)%5[Dd]%5[Dd]`)

	startPattern = regexp.MustCompile(`^\[\[@repeat\(([^()\s]+)\)\]\]$`)
	endPattern   = regexp.MustCompile(`^\[\[@repeatend\(([^()\s]+)\)\]\]$`)
	anyDelimiter = regexp.MustCompile(`\[\[@repeat(?:end)?\([^()\s]+\)\]\]`)

	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
	zeroIndex    = regexp.MustCompile(`\[0\]`)

	decoder      = strings.NewReplacer("%5B", "[", "%5b", "[", "%5D", "]", "%5d", "]")
	encoder      = strings.NewReplacer("[", "%5B", "]", "%5D")
	lowerEncoder = strings.NewReplacer("[", "%5b", "]", "%5d")
)

// Wrap returns the literal token for key.
func Wrap(key string) string {
	return openMark + key + closeMark
}

// Encoded returns the percent-encoded token for key, the form a token takes
// once a browser or CMS has normalised an href.
func Encoded(key string) string {
	return encoder.Replace(Wrap(key))
}

// Keys returns every key referenced in s, raw or percent-encoded, in order of
// appearance. Duplicates are preserved.
func Keys(s string) []string {
	if !strings.Contains(s, openMark) && !strings.Contains(s, "%5") {
		return nil
	}
	type hit struct {
		pos int
		key string
	}
	var hits []hit
	for _, m := range valuePattern.FindAllStringSubmatchIndex(s, -1) {
		hits = append(hits, hit{pos: m[0], key: s[m[2]:m[3]]})
	}
	for _, m := range encodedPattern.FindAllStringSubmatchIndex(s, -1) {
		hits = append(hits, hit{pos: m[0], key: decoder.Replace(s[m[2]:m[3]])})
	}
	if len(hits) == 0 {
		return nil
	}
	// insertion sort keeps this allocation free for the usual one or two hits
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	keys := make([]string, len(hits))
	for i, h := range hits {
		keys[i] = h.key
	}
	return keys
}

// Distinct returns the keys referenced in s without duplicates, preserving the
// first-occurrence order.
func Distinct(s string) []string {
	return Unique(Keys(s))
}

// Unique removes duplicate entries while keeping order.
func Unique(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Contains reports whether s holds the raw or encoded token for key.
func Contains(s, key string) bool {
	if strings.Contains(s, Wrap(key)) {
		return true
	}
	return strings.Contains(s, Encoded(key)) || strings.Contains(s, lowerEncoder.Replace(Wrap(key)))
}

// Replace substitutes both token forms of key in s with value.
func Replace(s, key, value string) string {
	s = strings.ReplaceAll(s, Wrap(key), value)
	if !strings.Contains(s, "%5") {
		return s
	}
	s = strings.ReplaceAll(s, Encoded(key), value)
	return strings.ReplaceAll(s, lowerEncoder.Replace(Wrap(key)), value)
}

// Strip removes every value token, raw or encoded, from s.
func Strip(s string) string {
	s = valuePattern.ReplaceAllString(s, "")
	return encodedPattern.ReplaceAllString(s, "")
}

// Normalize rewrites percent-encoded tokens into their raw form, leaving the
// rest of s untouched.
func Normalize(s string) string {
	return encodedPattern.ReplaceAllStringFunc(s, func(m string) string {
		return decoder.Replace(m)
	})
}

// IsSole reports whether s, once trimmed, consists of exactly one token.
func IsSole(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	m := valuePattern.FindStringSubmatchIndex(trimmed)
	if m == nil || m[0] != 0 || m[1] != len(trimmed) {
		return "", false
	}
	return trimmed[m[2]:m[3]], true
}

// Adjacent returns pairs of tokens that follow each other without any literal
// separator, e.g. `[[a]][[b]]`. Extraction of such layouts is best-effort.
func Adjacent(s string) [][2]string {
	locs := valuePattern.FindAllStringSubmatchIndex(s, -1)
	var out [][2]string
	for i := 1; i < len(locs); i++ {
		if locs[i][0] == locs[i-1][1] {
			out = append(out, [2]string{s[locs[i-1][2]:locs[i-1][3]], s[locs[i][2]:locs[i][3]]})
		}
	}
	return out
}

// RepeatStart reports whether s is a sole `[[@repeat(name)]]` marker.
func RepeatStart(s string) (string, bool) {
	m := startPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// RepeatEnd reports whether s is a sole `[[@repeatend(name)]]` marker.
func RepeatEnd(s string) (string, bool) {
	m := endPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsDelimiter reports whether s is a sole start or end marker.
func IsDelimiter(s string) bool {
	if _, ok := RepeatStart(s); ok {
		return true
	}
	_, ok := RepeatEnd(s)
	return ok
}

// StripDelimiters removes repeat markers embedded in s.
func StripDelimiters(s string) string {
	return anyDelimiter.ReplaceAllString(s, "")
}

// BaseKey converts an indexed key (`faq[2].q`) into its base form (`faq[].q`).
func BaseKey(key string) string {
	return indexPattern.ReplaceAllString(key, "[]")
}

// ZeroBase returns the base-key form of key when every index it carries is 0.
// Index-0 nodes may still render the un-expanded token, so binders fall back
// to it.
func ZeroBase(key string) (string, bool) {
	if !strings.Contains(key, "[0]") {
		return "", false
	}
	for _, m := range indexPattern.FindAllStringSubmatch(key, -1) {
		if m[1] != "0" {
			return "", false
		}
	}
	return zeroIndex.ReplaceAllString(key, "[]"), true
}

// Index describes one `[N]` segment of an indexed key.
type Index struct {
	// Prefix is the key text before the bracket, e.g. `faq[0].items`.
	Prefix string
	// Name is the last dotted segment of Prefix, e.g. `items`.
	Name  string
	Value int
}

// Indices returns the index segments of an indexed key in order.
func Indices(key string) []Index {
	locs := indexPattern.FindAllStringSubmatchIndex(key, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]Index, 0, len(locs))
	for _, loc := range locs {
		n, err := strconv.Atoi(key[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		prefix := key[:loc[0]]
		name := prefix
		if dot := strings.LastIndex(prefix, "."); dot >= 0 {
			name = prefix[dot+1:]
		}
		out = append(out, Index{Prefix: prefix, Name: name, Value: n})
	}
	return out
}

var anyTokenPattern = regexp.MustCompile(`\[\[[a-zA-Z0-9_.\[\]]+?\]\]|%5[Bb]%5[Bb](?:[a-zA-Z0-9_.]|%5[BbDd])+?%5[Dd]%5[Dd]`)

// segments caches the per-name base segment patterns used by RewriteIndex.
var segments sync.Map

func segmentPattern(name string) *regexp.Regexp {
	if re, ok := segments.Load(name); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(^\[\[|^%5[Bb]%5[Bb]|\.)` + regexp.QuoteMeta(name) + `(\[\]|%5[Bb]%5[Dd])`)
	actual, _ := segments.LoadOrStore(name, re)
	return actual.(*regexp.Regexp)
}

// RewriteIndex turns the base segment `name[]` into `name[idx]` inside every
// token of s. Only the segment that starts the key or follows a dot is
// rewritten, so `[[faq[0].items[].x]]` rewrites for name "items" but
// `[[otherfaq[].x]]` does not for name "faq". Encoded tokens keep their
// encoding.
func RewriteIndex(s, name string, idx int) string {
	if !strings.Contains(s, name) {
		return s
	}
	segment := segmentPattern(name)
	n := strconv.Itoa(idx)
	return anyTokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		return segment.ReplaceAllStringFunc(tok, func(m string) string {
			sub := segment.FindStringSubmatch(m)
			if sub[2] == "[]" {
				return sub[1] + name + "[" + n + "]"
			}
			return sub[1] + name + "%5B" + n + "%5D"
		})
	})
}
