package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"

	"github.com/MSM2025CL/stproject/internal/ann"
	"github.com/MSM2025CL/stproject/internal/config"
	"github.com/MSM2025CL/stproject/internal/domain/search/result"
	healthuc "github.com/MSM2025CL/stproject/internal/usecase/health"
)

const descriptionWidth = 60

func renderResults(w io.Writer, rs []result.Result, withScores bool) {
	table := tablewriter.NewWriter(w)
	header := []any{"#", "SKU", "Provider", "Description", "Price", "Offer"}
	if withScores {
		header = append(header, "Info", "Desc", "AllInfo", "TF-IDF")
	}
	table.Header(header...)

	for i := range rs {
		p := rs[i].Product()
		row := []any{
			strconv.Itoa(i + 1),
			p.SKU(),
			p.Provider(),
			truncateString(p.Description(), descriptionWidth),
			formatPrice(p.ListPrice()),
			formatPrice(p.OfferPrice()),
		}
		if withScores {
			if s, ok := rs[i].Scores(); ok {
				row = append(row, formatScore(s.Info), formatScore(s.Description),
					formatScore(s.AllInfo), formatScore(s.TFIDF))
			} else {
				row = append(row, "-", "-", "-", "-")
			}
		}
		_ = table.Append(row...)
	}

	_ = table.Render()
	_, _ = fmt.Fprintf(w, "%d result(s)\n", len(rs))
}

func renderInspect(w io.Writer, cfg config.Config, rows, providers int, st ann.Stats) {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")
	_ = table.Append("catalog", cfg.Catalog.Path)
	_ = table.Append("rows", strconv.Itoa(rows))
	_ = table.Append("providers", strconv.Itoa(providers))
	_ = table.Append("dimensions", strconv.Itoa(st.Dimensions))
	_ = table.Append("indexed", strconv.Itoa(st.Indexed))
	_ = table.Append("skipped", strconv.Itoa(st.Skipped))
	_ = table.Append("trees", strconv.Itoa(st.Trees))
	_ = table.Append("embedding model", cfg.Embedding.Model)
	_ = table.Render()
}

func renderHealth(w io.Writer, report healthuc.Report) {
	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	slices.Sort(names)

	_, _ = fmt.Fprintf(w, "status: %s\n", report.Status)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", name, report.Checks[name])
	}
}

func formatPrice(v float64) string {
	if v <= 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func truncateString(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxRunes-3]) + "..."
}
