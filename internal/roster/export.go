package roster

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var csvHeader = []string{"Team", "DisplayName", "UserId", "Tags"}

// WriteCSV writes one row per (team, member) pair of views, in view order.
// Every field is quoted; encoding/csv only quotes when it must. Rows are
// separated by "\n" with no trailing newline. It returns the number of data rows.
func WriteCSV(w io.Writer, views []View) (int, error) {
	bw := bufio.NewWriter(w)
	writeRecord(bw, csvHeader)

	rows := 0
	for _, v := range views {
		for _, e := range v.Entries {
			bw.WriteByte('\n')
			writeRecord(bw, []string{v.Team.Name, e.DisplayName, e.MemberID, e.Tags()})
			rows++
		}
	}

	if err := bw.Flush(); err != nil {
		return rows, fmt.Errorf("writing csv: %w", err)
	}
	return rows, nil
}

func writeRecord(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
}
