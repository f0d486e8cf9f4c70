// Package report renders discovery results as a console table or CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ebiym/scopesnap/internal/discover"
)

var (
	columns = []string{"TYPE", "ADDRESS", "PORT", "VENDOR", "IDN", "VISA RESOURCE"}
	widths  = []int{9, 17, 8, 22, 52, 42}
)

// PrintTable writes a fixed-width results table.
func PrintTable(w io.Writer, results []discover.Instrument) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No instruments found.")
		return
	}

	fmt.Fprintln(w, row(columns))
	var sep []string
	for _, width := range widths {
		sep = append(sep, strings.Repeat("-", width))
	}
	fmt.Fprintln(w, row(sep))

	for _, r := range results {
		fmt.Fprintln(w, row([]string{r.Kind, r.Address, portLabel(r), r.Vendor, r.IDN, r.Resource}))
	}
	fmt.Fprintf(w, "\nTotal found: %d instrument(s)\n", len(results))
}

func portLabel(r discover.Instrument) string {
	if r.Kind == "usb" {
		return "USB-TMC"
	}
	return strconv.Itoa(r.Port)
}

func row(values []string) string {
	cells := make([]string, len(values))
	for i, v := range values {
		w := widths[i]
		if len(v) > w {
			v = v[:w]
		}
		cells[i] = fmt.Sprintf("%-*s", w, v)
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}

// WriteCSV saves results to path, creating parent directories.
func WriteCSV(path string, results []discover.Instrument) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create CSV directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"type", "address", "port", "vendor", "idn", "resource"}); err != nil {
		return err
	}
	for _, r := range results {
		if err := w.Write([]string{r.Kind, r.Address, portLabel(r), r.Vendor, r.IDN, r.Resource}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
