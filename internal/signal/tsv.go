package signal

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseEventsTSV reads whitespace-separated raw events, one per line:
//
//	mean stdev start length
//
// Blank lines and lines starting with '#' are skipped, as is a leading
// header line starting with "mean".
func ParseEventsTSV(r io.Reader) ([]RawEvent, error) {
	var list []RawEvent
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if len(list) == 0 && f[0] == "mean" {
			continue
		}
		if len(f) != 4 {
			return nil, fmt.Errorf("line %d: want 4 fields, got %d", ln, len(f))
		}
		var (
			ev  RawEvent
			err error
		)
		if ev.Mean, err = strconv.ParseFloat(f[0], 64); err != nil {
			return nil, fmt.Errorf("line %d: mean: %w", ln, err)
		}
		if ev.Stdev, err = strconv.ParseFloat(f[1], 64); err != nil {
			return nil, fmt.Errorf("line %d: stdev: %w", ln, err)
		}
		if ev.Start, err = strconv.ParseInt(f[2], 10, 64); err != nil {
			return nil, fmt.Errorf("line %d: start: %w", ln, err)
		}
		if ev.Length, err = strconv.ParseInt(f[3], 10, 64); err != nil {
			return nil, fmt.Errorf("line %d: length: %w", ln, err)
		}
		list = append(list, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
