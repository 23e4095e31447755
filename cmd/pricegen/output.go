package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/zappabad/pricegen"
)

// writeResults prints paths as a JSON array or as CSV rows of
// path,step,price.
func writeResults(w io.Writer, format string, results []pricegen.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)

	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"path", "step", "price"}); err != nil {
			return err
		}
		for i, r := range results {
			for j, p := range r.Data {
				row := []string{strconv.Itoa(i), strconv.Itoa(j), strconv.FormatFloat(p, 'f', -1, 64)}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		cw.Flush()
		return cw.Error()
	}
	return fmt.Errorf("unknown output format %q", format)
}
