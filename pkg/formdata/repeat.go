package formdata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RemoveItem deletes every entry of repeater item index and shifts later
// items down by one, so `faq[2].q` becomes `faq[1].q` after removing item 1.
// prefix is the repeater key prefix, e.g. `faq` or `faq[0].items`.
func (d Data) RemoveItem(prefix string, index int) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `\[(\d+)\](.*)$`)
	moved := Data{}
	for key, value := range d {
		m := pattern.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < index {
			continue
		}
		delete(d, key)
		if n == index {
			continue
		}
		moved[fmt.Sprintf("%s[%d]%s", prefix, n-1, m[2])] = value
	}
	for key, value := range moved {
		d[key] = value
	}
}

// ItemCount returns the number of items of the repeater prefix present in d.
func (d Data) ItemCount(prefix string) int {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `\[(\d+)\]`)
	count := 0
	for key := range d {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if m := pattern.FindStringSubmatch(key); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n+1 > count {
				count = n + 1
			}
		}
	}
	return count
}
