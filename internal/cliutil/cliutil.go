package cliutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SignalExts lists the file extensions picked up when a directory is given.
var SignalExts = []string{".sqlite", ".db"}

func hasGlobMeta(s string) bool { return strings.ContainsAny(s, "*?[") }

func isSignalFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SignalExts {
		if ext == e {
			return true
		}
	}
	return false
}

// ExpandPositionals expands globs and directories among the input paths.
// A directory contributes its signal files (non-recursive, sorted).
func ExpandPositionals(posArgs []string) ([]string, error) {
	var out []string
	for _, a := range posArgs {
		if hasGlobMeta(a) {
			m, err := filepath.Glob(a)
			if err != nil {
				return nil, fmt.Errorf("bad glob %q: %v", a, err)
			}
			if len(m) == 0 {
				return nil, fmt.Errorf("no input matched %q", a)
			}
			out = append(out, m...)
			continue
		}
		fi, err := os.Stat(a)
		if err != nil || !fi.IsDir() {
			// Missing files are reported per read by the summarizer.
			out = append(out, a)
			continue
		}
		ents, err := os.ReadDir(a)
		if err != nil {
			return nil, fmt.Errorf("read dir %q: %w", a, err)
		}
		var found []string
		for _, e := range ents {
			if !e.IsDir() && isSignalFile(e.Name()) {
				found = append(found, filepath.Join(a, e.Name()))
			}
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no signal files in %q", a)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
