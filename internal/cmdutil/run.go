package cmdutil

import (
	"context"

	"nanoprep/internal/pipeline"
	"nanoprep/internal/summary"
)

// Stats counts what a run saw.
type Stats struct {
	Total    int // summaries produced
	Accepted int // summaries with NumEvents > 0
	Kept     int // summaries sent to the writer
}

// RunStream runs the shared pipeline, applies a visitor, and streams results via send.
// It returns the run counters and the first error encountered.
func RunStream(
	ctx context.Context,
	cfg pipeline.Config,
	files []string,
	sm pipeline.Summarizer,
	visit func(*summary.ReadSummary) (bool, error),
	send func(*summary.ReadSummary) error,
) (Stats, error) {
	var st Stats
	err := pipeline.ForEachSummary(ctx, cfg, files, sm, func(rs *summary.ReadSummary) error {
		st.Total++
		if rs.Accepted() {
			st.Accepted++
		}
		keep, vErr := visit(rs)
		if vErr != nil {
			return vErr
		}
		if !keep {
			return nil
		}
		if err := send(rs); err != nil {
			return err
		}
		st.Kept++
		return nil
	})
	return st, err
}
