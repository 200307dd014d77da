package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/phraseweaver/internal/ui/theme"
)

// Bar is one row of a BarChart.
type Bar struct {
	Label string
	Value int
}

// BarChart renders labelled horizontal bars scaled to the largest value.
type BarChart struct {
	Bars  []Bar
	Width int // Width of the longest bar
}

// View renders one line per bar.
func (c BarChart) View(st *theme.Styles) string {
	maxVal, labelWidth := 0, 0
	for _, b := range c.Bars {
		maxVal = max(maxVal, b.Value)
		labelWidth = max(labelWidth, len(b.Label))
	}
	width := max(c.Width, 1)

	var sb strings.Builder
	for _, b := range c.Bars {
		n := 0
		if maxVal > 0 {
			n = b.Value * width / maxVal
		}
		if b.Value > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(&sb, "%-*s ", labelWidth, b.Label)
		sb.WriteString(st.Filled.Render(strings.Repeat("█", n)))
		sb.WriteString(st.Hint.Render(fmt.Sprintf(" %d", b.Value)))
		sb.WriteByte('\n')
	}
	return sb.String()
}
