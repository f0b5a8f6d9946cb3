package util

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ExpandRange expands comma-separated values and inclusive ranges into a
// sorted, duplicate-free list: "1-3,5,7-9" -> [1 2 3 5 7 8 9]. Blank
// elements are ignored.
func ExpandRange(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, err := parseBounds(part)
		if err != nil {
			return nil, err
		}
		for n := lo; n <= hi; n++ {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// parseBounds parses "n" or "lo-hi".
func parseBounds(part string) (int, int, error) {
	first, last, isRange := strings.Cut(part, "-")
	lo, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value in %q: %w", part, err)
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(last))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end in %q: %w", part, err)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("range %q runs backwards", part)
	}
	return lo, hi, nil
}

// CompactRange is the inverse of ExpandRange: [1 2 3 5 7 8 9] -> "1-3,5,7-9".
// The input need not be sorted.
func CompactRange(values []int) string {
	if len(values) == 0 {
		return ""
	}
	sorted := slices.Compact(slices.Sorted(slices.Values(values)))

	var b strings.Builder
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(sorted[i]))
		if j > i {
			fmt.Fprintf(&b, "-%d", sorted[j])
		}
		i = j + 1
	}
	return b.String()
}

// ExpandVLANRange expands VLAN range notation as printed by switch CLIs
// "100-105,200" -> [100, 101, 102, 103, 104, 105, 200]. The keyword
// "none" expands to an empty list.
func ExpandVLANRange(s string) ([]int, error) {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return []int{}, nil
	}

	vlans, err := ExpandRange(s)
	if err != nil {
		return nil, err
	}
	for _, vlan := range vlans {
		if err := ValidateVLANID(vlan); err != nil {
			return nil, err
		}
	}
	return vlans, nil
}
