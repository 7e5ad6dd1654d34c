package summary

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTagsExhausted means every annotation slot of a file is taken.
var ErrTagsExhausted = errors.New("no free annotation tag")

// AllocateTag returns the first prefix+NNN (NNN in [000, slots)) not yet
// present among existing tags.
func AllocateTag(existing []string, prefix string, slots int) (string, error) {
	used := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		if len(t) <= len(prefix) || !strings.HasPrefix(t, prefix) {
			continue
		}
		used[t[len(prefix):]] = struct{}{}
	}
	for i := 0; i < slots; i++ {
		suffix := fmt.Sprintf("%03d", i)
		if _, taken := used[suffix]; !taken {
			return prefix + suffix, nil
		}
	}
	return "", fmt.Errorf("%w: %d slots of %q in use", ErrTagsExhausted, slots, prefix)
}
