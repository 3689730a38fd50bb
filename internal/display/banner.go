package display

import (
	"fmt"
	"io"

	"github.com/backmassage/texbuild/internal/logging"
)

const banner = ` _            _           _ _     _
| |_ _____  _| |__  _   _(_) | __| |
| __/ _ \ \/ / '_ \| | | | | |/ _` + "`" + ` |
| ||  __/>  <| |_) | |_| | | | (_| |
 \__\___/_/\_\_.__/ \__,_|_|_|\__,_|
`

// PrintBanner writes the ASCII banner to w, in magenta when colors are on.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, logging.Magenta+banner+logging.NC)
	if version != "" {
		fmt.Fprintf(w, "%35s\n", version)
	}
	fmt.Fprintln(w)
}
