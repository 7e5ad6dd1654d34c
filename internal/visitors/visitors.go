// Package visitors holds the per-summary filters applied before writing.
package visitors

import "nanoprep/internal/summary"

// PassThrough keeps every summary, rejected reads included.
type PassThrough struct{}

func (PassThrough) Visit(rs *summary.ReadSummary) (keep bool, err error) {
	return true, nil
}

// AcceptedOnly drops rejected reads.
type AcceptedOnly struct{}

func (AcceptedOnly) Visit(rs *summary.ReadSummary) (keep bool, err error) {
	return rs.Accepted(), nil
}
