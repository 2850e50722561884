package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var header = color.New(color.FgCyan, color.Bold)

// asJSON JSON выводится по флагу или когда stdout не терминал
func asJSON() bool {
	return jsonOutput || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable печатает заголовок и строки, либо v в JSON
func printTable(v any, columns []string, rows [][]string) error {
	if asJSON() {
		return printJSON(v)
	}
	return writeTable(os.Stdout, columns, rows)
}

func writeTable(out io.Writer, columns []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, c := range columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		header.Fprint(w, c)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
