package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRecords(t *testing.T, doc string) []Record {
	t.Helper()
	recs, err := ReadRecords(strings.NewReader(doc))
	require.NoError(t, err)
	return recs
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewKoinlyAdapter())

	assert.NotNil(t, r.Get("koinly"))
	assert.NotNil(t, r.Get("KOINLY"))
	assert.Nil(t, r.Get("unknown"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(NewKoinlyAdapter())
	assert.Panics(t, func() { r.Register(NewKoinlyAdapter()) })
}

func TestDefaultRegistry_Sources(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"fidelity", "interactive-brokers", "koinly", "robinhood", "schwab"}, r.Sources())
}

func TestRegistry_Detect(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		file string
		want string
	}{
		{"koinly-2025.json", "koinly"},
		{"Schwab_activity.json", "schwab"},
		{"/tmp/import/interactive-brokers-q1.json", "interactive-brokers"},
		{"fidelity.json", "fidelity"},
		{"chase.json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			a := r.Detect(tt.file)
			if tt.want == "" {
				assert.Nil(t, a)
				return
			}
			require.NotNil(t, a)
			assert.Equal(t, tt.want, a.Source())
		})
	}
}

func TestReadRecords(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"array", `[{"a":1},{"a":2}]`, 2},
		{"items", `{"items":[{"a":1}]}`, 1},
		{"activities", `{"activities":[{"a":1},{"a":2},{"a":3}]}`, 3},
		{"results", `{"next":null,"results":[]}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := mustRecords(t, tt.doc)
			assert.Len(t, recs, tt.want)
		})
	}
}

func TestReadRecords_Errors(t *testing.T) {
	for _, doc := range []string{`{"foo":[]}`, `"text"`, `[1,2]`, `{`} {
		_, err := ReadRecords(strings.NewReader(doc))
		assert.Error(t, err, doc)
	}
}

func TestReadRecords_KeepsPrecision(t *testing.T) {
	recs := mustRecords(t, `[{"amount": 0.123456789012345678}]`)
	d, ok := aliases("$.amount").decimal(recs[0])
	require.True(t, ok)
	assert.Equal(t, "0.123456789012345678", d.String())
}

func TestField_Fallback(t *testing.T) {
	f := aliases("$.amount", "$.Amount", `$["Amount ($)"]`)

	tests := []struct {
		name string
		doc  string
		want string
		ok   bool
	}{
		{"first alias", `[{"amount":"1.5","Amount":"2"}]`, "1.5", true},
		{"second alias", `[{"Amount":"-2"}]`, "-2", true},
		{"bracket alias", `[{"Amount ($)":"$1,234.50"}]`, "1234.5", true},
		{"parenthesized negative", `[{"amount":"(12.00)"}]`, "-12", true},
		{"empty string skipped", `[{"amount":"","Amount":3}]`, "3", true},
		{"zero is present", `[{"amount":0,"Amount":3}]`, "0", true},
		{"absent", `[{"other":1}]`, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := mustRecords(t, tt.doc)[0]
			d, ok := f.decimal(rec)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestField_Time(t *testing.T) {
	f := aliases("$.date")

	tests := []struct {
		doc  string
		want string
	}{
		{`[{"date":"2025-01-15T10:30:00Z"}]`, "2025-01-15T10:30:00Z"},
		{`[{"date":"2025-01-15T10:30:00.123-05:00"}]`, "2025-01-15T15:30:00.123Z"},
		{`[{"date":"2025-01-15"}]`, "2025-01-15T00:00:00Z"},
		{`[{"date":"01/15/2025 as of 01/14/2025"}]`, "2025-01-15T00:00:00Z"},
		{`[{"date":"20250115;103000"}]`, "2025-01-15T10:30:00Z"},
		{`[{"date":1736937000}]`, "2025-01-15T10:30:00Z"},
		{`[{"date":1736937000000}]`, "2025-01-15T10:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			got, ok := f.time(mustRecords(t, tt.doc)[0])
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Format(time.RFC3339Nano))
		})
	}
}

func TestField_TimeOrEpoch(t *testing.T) {
	rec := mustRecords(t, `[{"date":"not a date"}]`)[0]
	assert.Equal(t, int64(0), aliases("$.date").timeOr(rec).Unix())
}

func TestAliases_InvalidPathPanics(t *testing.T) {
	assert.Panics(t, func() { aliases("$[") })
}

func TestScanAndMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "koinly-2025.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`x`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "processed"), 0o755))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "koinly-2025.json", files[0].Name)

	require.NoError(t, MarkProcessed(dir, "koinly-2025.json"))
	_, err = os.Stat(filepath.Join(dir, "processed", "koinly-2025.json"))
	assert.NoError(t, err)

	files, err = Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Nil(t, files)
}
