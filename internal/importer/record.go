package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Record is one raw institution record as decoded from JSON. Numbers are
// kept as json.Number so amounts are never rounded through float64.
type Record map[string]any

// listKeys are the wrapper keys searched, in order, when an export is a
// JSON object rather than an array.
var listKeys = []string{"items", "activities", "results", "transactions", "trades", "positions"}

// ReadRecords decodes a raw export: either a JSON array of objects or an
// object holding such an array under one of listKeys.
func ReadRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	list, ok := doc.([]any)
	if !ok {
		obj, isObj := doc.(map[string]any)
		if !isObj {
			return nil, fmt.Errorf("decoding records: expected array or object, got %T", doc)
		}
		for _, k := range listKeys {
			if l, found := obj[k].([]any); found {
				list, ok = l, true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("decoding records: no list under any of %v", listKeys)
		}
	}

	records := make([]Record, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d: expected object, got %T", i, item)
		}
		records = append(records, Record(obj))
	}
	return records, nil
}

// raw returns the record as JSON for the original_data column.
func (r Record) raw() json.RawMessage {
	b, err := json.Marshal(map[string]any(r))
	if err != nil {
		return nil
	}
	return b
}

type evaluable = func(context.Context, interface{}) (interface{}, error)

// field is the ordered list of aliases a logical field may appear under.
// Aliases are JSONPath expressions compiled once, when the adapter is built.
type field struct {
	paths []string
	evals []evaluable
}

// aliases compiles JSONPath aliases. It panics on an invalid path; aliases
// are constants in adapter constructors.
func aliases(paths ...string) field {
	f := field{paths: paths}
	for _, p := range paths {
		eval, err := jsonpath.New(p)
		if err != nil {
			panic(fmt.Sprintf("invalid field alias %q: %v", p, err))
		}
		f.evals = append(f.evals, eval)
	}
	return f
}

// values yields every non-empty alias value in order.
func (f field) values(rec Record) []any {
	var out []any
	for _, eval := range f.evals {
		v, err := eval(context.Background(), map[string]any(rec))
		if err != nil || isEmpty(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	}
	return false
}

// present reports whether any alias resolves to a non-empty value.
func (f field) present(rec Record) bool {
	return len(f.values(rec)) > 0
}

// str returns the first alias value as a trimmed string, or "".
func (f field) str(rec Record) string {
	for _, v := range f.values(rec) {
		if s, ok := scalarString(v); ok {
			return s
		}
	}
	return ""
}

// strOr returns str(rec), or def when no alias is present.
func (f field) strOr(rec Record, def string) string {
	if s := f.str(rec); s != "" {
		return s
	}
	return def
}

// decimal returns the first alias value that parses as a number.
func (f field) decimal(rec Record) (decimal.Decimal, bool) {
	for _, v := range f.values(rec) {
		if d, ok := toDecimal(v); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// decimalOr returns decimal(rec), or zero.
func (f field) decimalOr(rec Record) decimal.Decimal {
	d, _ := f.decimal(rec)
	return d
}

// time returns the first alias value that parses as a timestamp.
func (f field) time(rec Record) (time.Time, bool) {
	for _, v := range f.values(rec) {
		if t, ok := toTime(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// timeOr returns time(rec), or the Unix epoch. A missing date must not
// fall back to "now": that would give re-imports a different link.
func (f field) timeOr(rec Record) time.Time {
	if t, ok := f.time(rec); ok {
		return t
	}
	return time.Unix(0, 0).UTC()
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(x), true
	case string:
		s := strings.TrimSpace(x)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, "$", "")
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			s = "-" + strings.Trim(s, "()")
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Zero, false
}

// dateLayouts are tried in order against string timestamps.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"20060102;150405",
	"20060102",
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(n), true
	case float64:
		return fromEpoch(int64(x)), true
	case string:
		s := strings.TrimSpace(x)
		// Custodian feeds write "01/15/2025 as of 01/14/2025"; the first
		// date is the posting date.
		if i := strings.Index(s, " as of "); i > 0 {
			s = s[:i]
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// fromEpoch accepts seconds or milliseconds.
func fromEpoch(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
