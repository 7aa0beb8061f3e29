/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package summary renders the run's story transitions as a markdown table
// for the GitHub Actions step summary.
package summary

import (
	"fmt"
	"io"

	"github.com/frontloop/storysync/router"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// markdownTable creates a table writer emitting GitHub-flavored markdown.
func markdownTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// Write renders the updates applied during this run. With no updates it
// writes a one-line note instead of an empty table.
func Write(w io.Writer, updates []router.Update) error {
	if _, err := fmt.Fprintf(w, "## Story Sync\n\n"); err != nil {
		return err
	}
	if len(updates) == 0 {
		_, err := fmt.Fprintln(w, "No stories were updated.")
		return err
	}

	table := markdownTable([]string{"Story", "Name", "Moved To"}, w)
	for _, u := range updates {
		if err := table.Append([]string{fmt.Sprintf("%d", u.StoryID), u.Name, u.State}); err != nil {
			return err
		}
	}
	return table.Render()
}
