/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/highlight"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/palette"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/view"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7d7d7d"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a40000"))
)

// renderer draws a search result for a terminal. In plain mode entities are
// written as [text|CATEGORY] and no escape codes are emitted.
type renderer struct {
	palette palette.Palette
	plain   bool
}

func (r renderer) segment(s highlight.Segment) string {
	if !s.Tagged {
		return s.Text
	}
	if r.plain {
		return fmt.Sprintf("[%s|%s]", s.Text, s.Category)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(r.palette.Colour(s.Category, s.Beginning))).
		Foreground(lipgloss.Color("#ffffff")).
		Bold(s.Beginning).
		Render(s.Text)
}

func (r renderer) highlighted(segments []highlight.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(r.segment(s))
	}
	return b.String()
}

func (r renderer) entities(rows []view.Row) string {
	if len(rows) == 0 {
		if r.plain {
			return "No entities found"
		}
		return mutedStyle.Render("No entities found")
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{row.Text, row.Category, fmt.Sprintf("%d-%d", row.Start, row.End)})
	}

	if r.plain {
		lines := make([]string, 0, len(cells))
		for _, c := range cells {
			lines = append(lines, strings.Join(c, "\t"))
		}
		return strings.Join(lines, "\n")
	}

	return table.New().
		Headers("Text", "Category", "Offsets").
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

// render returns the whole output for a finished search.
func (r renderer) render(state view.State) string {
	if state.Status == view.Failed {
		msg := "❌ " + state.ErrMessage()
		if r.plain {
			return msg
		}
		return errorStyle.Render(msg)
	}
	return r.highlighted(state.Segments()) + "\n\n" + r.entities(state.Rows())
}
