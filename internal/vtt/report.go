package vtt

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// Report renders a one-page text summary of the session: the active map,
// grid calibration, fog coverage, and per-squad token tallies. Meant for
// pasting into session notes.
func (s *Session) Report() string {
	var b strings.Builder
	b.WriteString("--- session report ---\n")

	mapPath := "(none)"
	if a := s.Assets.Get(s.World.MapAsset); a != nil {
		mapPath = a.Path
	}
	fmt.Fprintf(&b, "map: %s (%dx%d px)\n", mapPath, s.World.MapW, s.World.MapH)
	fmt.Fprintf(&b, "grid: cell=%d offset=(%d,%d) shown=%v\n",
		s.World.Grid.CellSize, s.World.Grid.OffsetX, s.World.Grid.OffsetY, s.World.ShowGrid)

	total := s.World.Fog.Cols() * s.World.Fog.Rows()
	fmt.Fprintf(&b, "fog: %dx%d cells, %d/%d visible\n",
		s.World.Fog.Cols(), s.World.Fog.Rows(), s.World.Fog.VisibleCount(), total)

	fmt.Fprintf(&b, "tokens: %d  drawings: %d  assets: %d\n",
		len(s.World.Tokens), len(s.World.Drawings), s.Assets.Len())

	var squadCounts [SquadCount]int
	unassigned := 0
	hidden := 0
	for _, t := range s.World.Tokens {
		if t.Squad == SquadNone {
			unassigned++
		} else {
			squadCounts[t.Squad]++
		}
		if t.Hidden {
			hidden++
		}
	}
	for i, n := range squadCounts {
		if n > 0 {
			fmt.Fprintf(&b, "  squad %d: %d\n", i, n)
		}
	}
	if unassigned > 0 {
		fmt.Fprintf(&b, "  unassigned: %d\n", unassigned)
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "  hidden: %d\n", hidden)
	}

	for c := Condition(0); c < ConditionCount; c++ {
		n := 0
		for _, t := range s.World.Tokens {
			if t.Conditions[c] {
				n++
			}
		}
		if n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", c, n)
		}
	}
	return b.String()
}

// CopyReportToClipboard puts the session report on the system clipboard.
func (s *Session) CopyReportToClipboard() error {
	return clipboard.WriteAll(s.Report())
}
