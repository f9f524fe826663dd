package link

import (
	"fmt"
	"strings"
	"unicode"
)

// Sep separates link segments.
const Sep = "/"

// refLen caps the length of action references embedded in synthetic ids.
const refLen = 10

// Join builds a rooted link from segments, e.g. Join("alice", "schwab")
// returns "/alice/schwab". Surrounding slashes on segments are trimmed and
// empty segments are skipped.
func Join(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, Sep)
		if p == "" {
			continue
		}
		b.WriteString(Sep)
		b.WriteString(p)
	}
	if b.Len() == 0 {
		return Sep
	}
	return b.String()
}

// Account returns the link of an account bucket, e.g.
// "/alice/fidelity/brokerage/X123".
func Account(owner, institution, kind, id string) string {
	return Join(owner, institution, kind, id)
}

// Transaction returns the link of a transaction, e.g.
// "/alice/koinly/txn-123".
func Transaction(owner, institution, id string) string {
	return Join(owner, institution, id)
}

// Prefix returns the prefix shared by every link of an institution, with a
// trailing separator so that "/alice/ally" does not match "/alice/ally-bank".
func Prefix(owner, institution string) string {
	return Join(owner, institution) + Sep
}

// HasPrefix reports whether l equals prefix or lies beneath it. Matching is
// segment-aware.
func HasPrefix(l, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, Sep)
	if prefix == "" {
		return strings.HasPrefix(l, Sep)
	}
	return l == prefix || strings.HasPrefix(l, prefix+Sep)
}

// Segments splits a link into its segments.
// "/alice/schwab/brokerage" -> ["alice", "schwab", "brokerage"]
func Segments(l string) []string {
	l = strings.Trim(l, Sep)
	if l == "" {
		return nil
	}
	return strings.Split(l, Sep)
}

// Truncate keeps the first depth segments of a link.
// Truncate("/alice/schwab/brokerage/default", 2) -> "/alice/schwab"
func Truncate(l string, depth int) string {
	segs := Segments(l)
	if depth < len(segs) {
		segs = segs[:depth]
	}
	return Join(segs...)
}

// Slug lower-cases s and replaces whitespace runs with "-".
// "My Ledger Wallet" -> "my-ledger-wallet"
func Slug(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}

// Ref normalizes a free-form action string into a short id component:
// alphanumerics only, lower-cased, at most 10 runes.
// "Reinvest Dividend" -> "reinvestdi"
func Ref(action string) string {
	ref := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, action)
	if r := []rune(ref); len(r) > refLen {
		ref = string(r[:refLen])
	}
	return ref
}

// Synthetic joins id components with "_", skipping empty ones.
// Synthetic("schwab", "20250115", "AAPL", "buy", "-1500") ->
// "schwab_20250115_AAPL_buy_-1500"
func Synthetic(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "_")
}

// Deduper assigns stable suffixes to colliding synthetic ids within one
// batch. The first occurrence keeps the base id, later ones get _2, _3, ...
// in encounter order. A Deduper must not outlive the batch it serves.
type Deduper struct {
	seen map[string]int
}

// NewDeduper returns an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]int)}
}

// Next returns the id to use for the next occurrence of base.
func (d *Deduper) Next(base string) string {
	d.seen[base]++
	n := d.seen[base]
	if n == 1 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}
