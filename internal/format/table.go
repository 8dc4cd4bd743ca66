package format

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

// Tabular values know their own column layout.
type Tabular interface {
	TableHeader() []string
	TableRows() [][]string
}

const maxColWidth = 60

// WriteTable renders v for a terminal. Envelopes ({"data":..., "_hints":...})
// print the data followed by the hints. Tabular data becomes rows; anything
// else becomes a field/value listing.
func WriteTable(w io.Writer, v any) error {
	data := v
	var hints []string
	var meta map[string]any
	if env, ok := v.(map[string]any); ok {
		if d, ok := env["data"]; ok {
			data = d
		}
		hints, _ = env["_hints"].([]string)
		meta, _ = env["meta"].(map[string]any)
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = maxColWidth
	tbl.Wrap = true

	bold := color.New(color.Bold)
	if t, ok := data.(Tabular); ok {
		rows := t.TableRows()
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "(none)")
			if err != nil {
				return err
			}
			return writeFooter(w, meta, hints)
		}
		header := t.TableHeader()
		cells := make([]any, len(header))
		for i, h := range header {
			cells[i] = bold.Sprint(h)
		}
		tbl.AddRow(cells...)
		for _, r := range rows {
			cells := make([]any, len(r))
			for i, c := range r {
				cells[i] = c
			}
			tbl.AddRow(cells...)
		}
	} else {
		plain, err := toPlain(data)
		if err != nil {
			return err
		}
		m, ok := plain.(map[string]any)
		if !ok {
			_, err := fmt.Fprintln(w, cell(plain))
			if err != nil {
				return err
			}
			return writeFooter(w, meta, hints)
		}
		for _, k := range slices.Sorted(maps.Keys(m)) {
			tbl.AddRow(bold.Sprint(k), cell(m[k]))
		}
	}

	if _, err := fmt.Fprintln(w, tbl); err != nil {
		return err
	}
	return writeFooter(w, meta, hints)
}

func writeFooter(w io.Writer, meta map[string]any, hints []string) error {
	faint := color.New(color.Faint)
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		if _, err := fmt.Fprintln(w, faint.Sprintf("%s: %s", k, cell(meta[k]))); err != nil {
			return err
		}
	}
	for _, h := range hints {
		if _, err := fmt.Fprintln(w, faint.Sprint("hint: "+h)); err != nil {
			return err
		}
	}
	return nil
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		if t == "" {
			return "-"
		}
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
