package google

import "fmt"

// toValues converts a string table into the matrix the Sheets API expects.
func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		vals := make([]interface{}, len(r))
		for i, s := range r {
			vals[i] = s
		}
		out = append(out, vals)
	}
	return out
}

// toRows converts a values matrix (as returned by Sheets API) back into
// strings. Numbers come back as float64 and are printed with two decimals.
func toRows(values [][]interface{}) [][]string {
	out := make([][]string, 0, len(values))
	for _, r := range values {
		row := make([]string, len(r))
		for i, v := range r {
			switch x := v.(type) {
			case string:
				row[i] = x
			case float64:
				row[i] = fmt.Sprintf("%.2f", x)
			case nil:
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return out
}
