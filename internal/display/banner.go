package display

import (
	"fmt"
	"io"

	"github.com/backmassage/rname/internal/term"
)

const banner = ` _ __ _ __   __ _ _ __ ___   ___
| '__| '_ \ / _` + "`" + ` | '_ ` + "`" + ` _ \ / _ \
| |  | | | | (_| | | | | | |  __/
|_|  |_| |_|\__,_|_| |_| |_|\___|
`

// PrintBanner prints the ASCII art banner to w; magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Paint(term.Magenta, banner))
}
