package report

import (
	"fmt"
	"io"

	"github.com/stintio/stint/stats"
)

// Render writes the formatted report to w, highlighting the function name
// when the destination is a terminal.
func Render(w io.Writer, meta Meta, rec stats.Record, verbose bool) {
	styled := meta
	if colorize(w) {
		styled.Name = DefaultScheme().Name.Sprint(meta.Name)
	}
	fmt.Fprint(w, Format(styled, rec, verbose))
}
