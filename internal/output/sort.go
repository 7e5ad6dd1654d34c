package output

import (
	"sort"

	"nanoprep/internal/summary"
)

// SortSummaries orders summaries by file name, then read id.
func SortSummaries(list []*summary.ReadSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].FileName != list[j].FileName {
			return list[i].FileName < list[j].FileName
		}
		return list[i].ReadID < list[j].ReadID
	})
}
