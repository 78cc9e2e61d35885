package site

import (
	"context"
	"fmt"
	"time"

	"github.com/solresol/prosodia-catholica/internal/overlap"
	"github.com/solresol/prosodia-catholica/internal/store"
)

// Build assembles the render data: every stored line in reading order,
// translation stats, and the latest finished run's matches attached to
// their lines. A missing run just means no overlap pills.
func Build(ctx context.Context, st *store.Store, metricVersion, title string) (Data, error) {
	lines, err := st.AllLines(ctx)
	if err != nil {
		return Data{}, fmt.Errorf("failed to read lines: %w", err)
	}

	total, translated, err := st.TranslationStats(ctx)
	if err != nil {
		return Data{}, fmt.Errorf("failed to read stats: %w", err)
	}

	var byLine map[int64][]overlap.MatchRow
	run, err := st.LatestRun(ctx, metricVersion)
	if err != nil {
		return Data{}, fmt.Errorf("failed to read latest run: %w", err)
	}
	if run != nil {
		rows, err := st.MatchesForRun(ctx, run.ID)
		if err != nil {
			return Data{}, fmt.Errorf("failed to read matches: %w", err)
		}
		byLine = make(map[int64][]overlap.MatchRow, len(rows))
		for _, r := range rows {
			byLine[r.LineID] = append(byLine[r.LineID], r)
		}
	}

	data := Data{
		Title:       title,
		GeneratedAt: time.Now(),
		Stats:       Stats{Total: total, Translated: translated},
		Lines:       make([]Line, 0, len(lines)),
	}
	for _, l := range lines {
		data.Lines = append(data.Lines, fromStoreLine(l, byLine[l.ID]))
	}
	return data, nil
}

func fromStoreLine(l store.Line, rows []overlap.MatchRow) Line {
	out := Line{
		Ref:          l.Ref,
		Greek:        l.GreekText,
		English:      l.EnglishTranslation,
		Summary:      l.Summary,
		TranslatedAt: l.TranslatedAt,
	}
	for _, r := range rows {
		out.Overlaps = append(out.Overlaps, Overlap{
			EntryID:   r.EntryID,
			EntryRef:  r.EntryRef,
			Headword:  r.Headword,
			CharRatio: r.CharRatio,
			WordRatio: r.WordRatio,
			Span:      r.LineSpan,
		})
	}
	return out
}
