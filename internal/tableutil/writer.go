package tableutil

import (
	"io"

	"github.com/liggitt/tabwriter"
)

// New creates a tabwriter with the fork syncer's default spacing settings.
func New(out io.Writer, stripEscape bool) *tabwriter.Writer {
	var flags uint
	if stripEscape {
		flags = tabwriter.StripEscape
	}
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', flags)
}
