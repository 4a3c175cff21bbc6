// Package version provides build metadata and version comparison.
package version

import (
	"strconv"
	"strings"
)

// Version can be overridden at build time using ldflags:
// go build -ldflags "-X radiobrowse/internal/version.Version=1.2.0"
var Version = "dev"

// IsNewer reports whether candidate is a strictly newer release than
// current. Versions are compared as dotted integer sequences ("1.10.2");
// a missing component counts as zero, and anything unparseable compares
// as zero.
func IsNewer(current, candidate string) bool {
	cur := parse(current)
	cand := parse(candidate)

	n := len(cur)
	if len(cand) > n {
		n = len(cand)
	}

	for i := 0; i < n; i++ {
		a, b := at(cur, i), at(cand, i)
		if b > a {
			return true
		}
		if b < a {
			return false
		}
	}
	return false
}

func parse(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		// Tolerate suffixes like "2-beta": take the leading digits.
		j := 0
		for j < len(p) && p[j] >= '0' && p[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(p[:j])
		if err != nil {
			n = 0
		}
		nums[i] = n
	}
	return nums
}

func at(nums []int, i int) int {
	if i < len(nums) {
		return nums[i]
	}
	return 0
}
