package tui

import (
	"fmt"
	"strings"

	"github.com/pengelbrecht/ffimath/internal/conformance"
	"github.com/pengelbrecht/ffimath/internal/styles"
)

const (
	nameWidth   = 24
	callWidth   = 30
	resultWidth = 22
	errorWidth  = 48
)

// RenderReport formats a conformance report as a table. Passing rows are
// omitted unless all is set.
func RenderReport(r *conformance.Report, all bool) string {
	var lines []string
	lines = append(lines, styles.RenderLabel("Backend:")+"  "+r.Backend)
	lines = append(lines, "")

	for _, res := range r.Results {
		if res.Passed && !all {
			continue
		}
		call := fmt.Sprintf("%s(%s)", res.Case.Symbol, strings.Join(res.Case.Args, ", "))
		row := styles.PadRight(status(res.Passed), 6) +
			styles.PadRight(styles.Truncate(res.Case.Name, nameWidth-1), nameWidth) +
			styles.PadRight(styles.Truncate(call, callWidth-1), callWidth) +
			styles.PadRight(res.Got.String(), resultWidth)
		if res.Error != "" {
			row += styles.RenderDim(styles.Truncate(res.Error, errorWidth))
		}
		lines = append(lines, strings.TrimRight(row, " "))
	}

	for _, p := range r.Properties {
		if p.Passed && !all {
			continue
		}
		row := styles.PadRight(status(p.Passed), 6) + styles.PadRight(p.Name, nameWidth+callWidth)
		if p.Error != "" {
			row += styles.RenderDim(styles.Truncate(p.Error, errorWidth))
		}
		lines = append(lines, strings.TrimRight(row, " "))
	}

	if len(lines) > 2 {
		lines = append(lines, "")
	}
	summary := r.Summary()
	if r.OK() {
		summary = styles.RenderPass(summary)
	} else {
		summary = styles.RenderFail(summary)
	}
	lines = append(lines, summary)

	return styles.RenderBox(strings.Join(lines, "\n"))
}

func status(passed bool) string {
	if passed {
		return styles.RenderPass("PASS")
	}
	return styles.RenderFail("FAIL")
}
