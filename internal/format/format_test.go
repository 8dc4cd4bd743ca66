package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

type row struct {
	Name      string `json:"name"`
	TimeOfDay string `json:"time_of_day"`
}

type rows []row

func (r rows) TableHeader() []string { return []string{"NAME", "TIME"} }

func (r rows) TableRows() [][]string {
	out := make([][]string, 0, len(r))
	for _, x := range r {
		out = append(out, []string{x.Name, x.TimeOfDay})
	}
	return out
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, 1, "yaml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteJSON_Compact(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": rows{{Name: "a", TimeOfDay: "09:00"}}}, "json", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{"data":[{"name":"a","time_of_day":"09:00"}]}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestWriteEDN_KeywordsAndNesting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	v := map[string]any{
		"data":   row{Name: "AI", TimeOfDay: "09:00"},
		"_hints": []string{"autoplex status"},
		"count":  3,
		"ratio":  0.5,
		"empty":  nil,
	}
	if err := WriteEDN(&buf, v, false); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := `{:hints ["autoplex status"] :count 3 :data {:name "AI" :time-of-day "09:00"} :empty nil :ratio 0.5}` + "\n"
	if buf.String() != want {
		t.Fatalf("got  %q\nwant %q", buf.String(), want)
	}
}

func TestWriteEDN_Pretty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteEDN(&buf, []any{1, map[string]any{}}, true); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := "[\n  1\n  {}\n]\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestKeyword(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"name":                 ":name",
		"api_calls_this_month": ":api-calls-this-month",
		"_hints":               ":hints",
		" spaced key ":         ":spaced-key",
	}
	for in, want := range cases {
		if got := Keyword(in); got != want {
			t.Fatalf("Keyword(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteTable_TabularWithHints(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	v := map[string]any{
		"data":   rows{{Name: "AI Safety", TimeOfDay: "09:00"}, {Name: "Fusion", TimeOfDay: "18:30"}},
		"_hints": []string{"autoplex topics run <id>"},
	}
	if err := Write(&buf, v, "table", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, two rows and a hint, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "NAME") || !strings.Contains(lines[0], "TIME") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "AI Safety") || !strings.HasSuffix(lines[1], "09:00") {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if lines[3] != "hint: autoplex topics run <id>" {
		t.Fatalf("unexpected hint line %q", lines[3])
	}
}

func TestWriteTable_EmptyTabular(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteTable(&buf, map[string]any{"data": rows{}}); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if buf.String() != "(none)\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestWriteTable_FieldListingAndMeta(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	v := map[string]any{
		"data": row{Name: "AI", TimeOfDay: ""},
		"meta": map[string]any{"stale": true},
	}
	if err := WriteTable(&buf, v); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"name", "AI", "time_of_day", "-", "stale: true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
