package token

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKeysKeepsOrderAcrossEncodings(t *testing.T) {
	got := Keys(`https://x.test/?tasks=[[a]]&lang=%5B%5Bb%5D%5D&again=[[a]]`)
	if diff := cmp.Diff([]string{"a", "b", "a"}, got); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, Distinct(`[[a]] [[b]] [[a]]`)); diff != "" {
		t.Fatalf("distinct mismatch (-want +got):\n%s", diff)
	}
}

func TestKeysSplitsAdjacentTokens(t *testing.T) {
	if diff := cmp.Diff([]string{"first", "last"}, Keys(`[[first]][[last]]`)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][2]string{{"first", "last"}}, Adjacent(`[[first]][[last]] and [[x]]`)); diff != "" {
		t.Fatalf("adjacent mismatch (-want +got):\n%s", diff)
	}
}

func TestKeysEncodedRepeaterKey(t *testing.T) {
	got := Keys(`/faq?id=%5b%5bfaq%5B0%5D.slug%5d%5d`)
	if diff := cmp.Diff([]string{"faq[0].slug"}, got); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceBothForms(t *testing.T) {
	got := Replace(`[[a]]/%5B%5Ba%5D%5D/%5b%5ba%5d%5d`, "a", "v")
	if got != "v/v/v" {
		t.Fatalf("expected every form replaced, got %q", got)
	}
	if !Contains(`x%5B%5Ba%5D%5Dy`, "a") {
		t.Fatalf("expected encoded token to be found")
	}
}

func TestStripAndNormalize(t *testing.T) {
	if got := Strip(`Hi [[name]], see %5B%5Blink%5D%5D`); got != "Hi , see " {
		t.Fatalf("unexpected strip result %q", got)
	}
	if got := Normalize(`?q=%5B%5Ba%5D%5D&r=%5B`); got != `?q=[[a]]&r=%5B` {
		t.Fatalf("unexpected normalize result %q", got)
	}
}

func TestIsSole(t *testing.T) {
	cases := []struct {
		in   string
		key  string
		sole bool
	}{
		{"  [[hero.title]]\n", "hero.title", true},
		{"Hello [[name]]", "", false},
		{"[[a]][[b]]", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		key, ok := IsSole(tc.in)
		if key != tc.key || ok != tc.sole {
			t.Errorf("IsSole(%q) = %q, %v; want %q, %v", tc.in, key, ok, tc.key, tc.sole)
		}
	}
}

func TestRepeatMarkers(t *testing.T) {
	if name, ok := RepeatStart(" [[@repeat(faq)]] "); !ok || name != "faq" {
		t.Fatalf("expected start marker for faq, got %q %v", name, ok)
	}
	if name, ok := RepeatEnd("[[@repeatend(faq[0].items)]]"); !ok || name != "faq[0].items" {
		t.Fatalf("expected scoped end marker, got %q %v", name, ok)
	}
	if IsDelimiter("before [[@repeat(faq)]]") {
		t.Fatalf("embedded marker must not count as a delimiter row")
	}
	if got := StripDelimiters("a[[@repeat(x)]]b[[@repeatend(x)]]c"); got != "abc" {
		t.Fatalf("unexpected strip result %q", got)
	}
}

func TestBaseAndZeroBase(t *testing.T) {
	if got := BaseKey("faq[2].items[10].x"); got != "faq[].items[].x" {
		t.Fatalf("unexpected base key %q", got)
	}
	if base, ok := ZeroBase("faq[0].items[0].x"); !ok || base != "faq[].items[].x" {
		t.Fatalf("expected zero base, got %q %v", base, ok)
	}
	if _, ok := ZeroBase("faq[1].x"); ok {
		t.Fatalf("non-zero index must not have a zero base")
	}
	if _, ok := ZeroBase("hero.title"); ok {
		t.Fatalf("plain key must not have a zero base")
	}
}

func TestIndices(t *testing.T) {
	got := Indices("faq[1].items[3].label")
	want := []Index{
		{Prefix: "faq", Name: "faq", Value: 1},
		{Prefix: "faq[1].items", Name: "items", Value: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteIndex(t *testing.T) {
	cases := []struct {
		name string
		in   string
		rep  string
		idx  int
		want string
	}{
		{"top level", "[[faq[].q]] [[faq[].a]]", "faq", 2, "[[faq[2].q]] [[faq[2].a]]"},
		{"nested", "[[faq[0].items[].x]]", "items", 1, "[[faq[0].items[1].x]]"},
		{"other repeater untouched", "[[otherfaq[].x]]", "faq", 1, "[[otherfaq[].x]]"},
		{"encoded", "/x?%5B%5Bfaq%5B%5D.slug%5D%5D", "faq", 0, "/x?%5B%5Bfaq%5B0%5D.slug%5D%5D"},
		{"plain text untouched", "faq[] outside a token", "faq", 1, "faq[] outside a token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RewriteIndex(tc.in, tc.rep, tc.idx); got != tc.want {
				t.Fatalf("RewriteIndex(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSegmentPatternIsCachedPerName(t *testing.T) {
	first := segmentPattern("faq")
	if second := segmentPattern("faq"); second != first {
		t.Fatalf("expected the faq pattern to be reused")
	}
	if other := segmentPattern("items"); other == first {
		t.Fatalf("expected a distinct pattern per name")
	}
	if got := RewriteIndex("[[faq[].q]] [[faq[].a]]", "faq", 3); got != "[[faq[3].q]] [[faq[3].a]]" {
		t.Fatalf("unexpected rewrite %q", got)
	}
}
