package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectEntryLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"autoplex"},
			want: []string{"autoplex"},
		},
		{
			name: "filename first token",
			in:   []string{"autoplex", "ai-safety-new.html"},
			want: []string{"autoplex", "journal", "show", "ai-safety-new.html"},
		},
		{
			name: "filename after value flag",
			in:   []string{"autoplex", "--server", "http://x/api", "fusion.html"},
			want: []string{"autoplex", "--server", "http://x/api", "journal", "show", "fusion.html"},
		},
		{
			name: "filename after equals flag",
			in:   []string{"autoplex", "--format=table", "fusion.html"},
			want: []string{"autoplex", "--format=table", "journal", "show", "fusion.html"},
		},
		{
			name: "filename after bool flag",
			in:   []string{"autoplex", "--pretty", "fusion.HTML"},
			want: []string{"autoplex", "--pretty", "journal", "show", "fusion.HTML"},
		},
		{
			name: "filename after double dash",
			in:   []string{"autoplex", "--config", "c.yaml", "--", "fusion.html"},
			want: []string{"autoplex", "--config", "c.yaml", "journal", "show", "--", "fusion.html"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"autoplex", "journal", "show", "fusion.html"},
			want: []string{"autoplex", "journal", "show", "fusion.html"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"autoplex", "wat"},
			want: []string{"autoplex", "wat"},
		},
		{
			name: "paths are not entries",
			in:   []string{"autoplex", "docs/index.html"},
			want: []string{"autoplex", "docs/index.html"},
		},
		{
			name: "bare extension is not an entry",
			in:   []string{"autoplex", ".html"},
			want: []string{"autoplex", ".html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectEntryLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectEntryLookupArgs(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
