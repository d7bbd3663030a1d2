package ui

import (
	"io"
	"sort"

	"github.com/pterm/pterm"
)

// Table renders rows under a bold header row.
func Table(w io.Writer, headers []string, rows [][]string) {
	data := make([][]string, 0, len(rows)+1)
	data = append(data, headers)
	data = append(data, rows...)

	_ = pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

// KeyValueTable renders a two-column table sorted by key, skipping empty
// values. A non-empty title is printed as a header first.
func KeyValueTable(w io.Writer, title string, data map[string]string) {
	keys := make([]string, 0, len(data))
	for k, v := range data {
		if v != "" {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, data[k]})
	}

	if title != "" {
		Header(w, title)
	}

	Table(w, []string{"Field", "Value"}, rows)
}
