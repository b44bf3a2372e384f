package tui

import "golang.org/x/text/width"

// truncateToWidth trims s to at most maxCols terminal columns, counting
// East Asian wide/fullwidth runes as two columns. Result lines can
// contain any Unicode text; without this a single wide line can desync
// the terminal grid the rest of resultsView is drawn on.
func truncateToWidth(s string, maxCols int) string {
	cols := 0
	for rest := s; rest != ""; {
		p, size := width.LookupString(rest)
		w := 1
		switch p.Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w = 2
		}
		if cols+w > maxCols {
			return s[:len(s)-len(rest)]
		}
		cols += w
		rest = rest[size:]
	}
	return s
}
