package output

import (
	"strconv"
	"strings"
)

// TSVHeader is the canonical header row for TSV outputs.
// Keep this as the single source of truth; all writers should use it.
var TSVHeader = buildHeader()

var strandPrefixes = [2]string{"template_", "complement_"}

var modelColumns = []string{"model_name", "scale", "shift", "drift", "var", "scale_sd", "var_sd", "p_stay", "p_skip"}

func buildHeader() string {
	cols := []string{
		"file_name", "read_name", "num_events", "abasic_level",
		"template_start", "template_end", "complement_start", "complement_end",
	}
	for _, p := range strandPrefixes {
		for _, c := range modelColumns {
			cols = append(cols, p+c)
		}
	}
	return strings.Join(cols, "\t")
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
