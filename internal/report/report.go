// Package report ranks playlist feature profiles and renders the text report.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/duskriver/plrank/internal/models"
	"github.com/olekukonko/tablewriter"
)

// DefaultTopN is the report length per descriptor when none is requested.
const DefaultTopN = 10

// Entry is one ranked playlist with its averaged descriptor value.
type Entry struct {
	Name  string
	Value float64
}

// Ranking is the ordered top-N list for a single descriptor.
type Ranking struct {
	Descriptor string
	Entries    []Entry
}

// Spotify green for section headers, muted gray for the footer line.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1DB954"))
	footerStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262"))
)

// Rank produces one [Ranking] per descriptor in [models.Descriptors] order.
//
// Playlists sort descending by the descriptor's averaged value. The sort is
// stable, so ties keep the profiles' insertion (fetch) order; there is no
// secondary key. Each ranking is truncated to topN entries (DefaultTopN when
// topN <= 0); fewer playlists than topN yields all of them.
func Rank(profiles *models.OrderedMap[models.FeatureVector], topN int) []Ranking {
	if topN <= 0 {
		topN = DefaultTopN
	}

	rankings := make([]Ranking, 0, len(models.Descriptors))
	for _, descriptor := range models.Descriptors {
		entries := make([]Entry, 0, profiles.Len())
		for _, name := range profiles.Keys() {
			profile, _ := profiles.Get(name)
			entries = append(entries, Entry{Name: name, Value: profile.Value(descriptor)})
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Value > entries[j].Value
		})

		if len(entries) > topN {
			entries = entries[:topN]
		}

		rankings = append(rankings, Ranking{Descriptor: descriptor, Entries: entries})
	}

	return rankings
}

// Render writes the rankings as one block per descriptor: a styled header
// followed by a rank/playlist/average table.
func Render(w io.Writer, rankings []Ranking) error {
	for i, ranking := range rankings {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
		}

		if _, err := fmt.Fprintln(w, headerStyle.Render(ranking.Descriptor)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"#", "Playlist", "Average"})
		for rank, entry := range ranking.Entries {
			row := []string{
				strconv.Itoa(rank + 1),
				entry.Name,
				fmt.Sprintf("%.2f", entry.Value),
			}
			if err := table.Append(row); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w, footerStyle.Render(fmt.Sprintf("%d descriptors ranked", len(rankings)))); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
