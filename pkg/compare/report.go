package compare

import (
	"fmt"
	"io"
	"strings"
)

// Print writes the differences in the console report format.
func Print(w io.Writer, diffs []Difference) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\nFound %d records with different rotacio values:\n", len(diffs))
	for _, d := range diffs {
		fmt.Fprintf(&b, "iden: %s\n", formatValue(d.Iden))
		fmt.Fprintf(&b, "  Pre rotacio: %s\n", formatValue(d.RotacioPre))
		fmt.Fprintf(&b, "  Dev rotacio: %s\n", formatValue(d.RotacioDev))
		fmt.Fprintf(&b, "  Dev objectid: %d\n", d.ObjectIDDev)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}
