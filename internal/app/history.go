package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atomicstack/tweet-popup/internal/format/table"
	"github.com/atomicstack/tweet-popup/internal/history"
	"github.com/dustin/go-humanize"
)

const historyTextWidth = 48

// RunHistory prints the most recent posts, newest first.
func RunHistory(cfg Config, limit int, w io.Writer) error {
	if cfg.HistoryDB == "" {
		return errors.New("history is disabled (empty --history-db)")
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No posts recorded.")
		return err
	}
	for _, line := range HistoryLines(entries) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// HistoryLines lays out entries as aligned columns.
func HistoryLines(entries []history.Entry) []string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		text := strings.Join(strings.Fields(e.StatusText), " ")
		if e.HasImage {
			text = "[img] " + text
		}
		target := e.URL
		if e.Outcome == history.OutcomeFailed {
			target = e.Error
		}
		rows = append(rows, []string{humanize.Time(e.CreatedAt), e.Outcome, text, target})
	}
	return table.Format(rows, []table.Column{
		{Align: table.AlignRight},
		{},
		{MaxWidth: historyTextWidth},
		{},
	})
}
