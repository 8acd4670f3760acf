package version

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	modsemver "golang.org/x/mod/semver"

	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/release"
)

// coerceRegex finds the first major[.minor[.patch]] run after any leading
// non-digit prefix such as "v".
var coerceRegex = regexp.MustCompile(`^\D*(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// SelectRelease returns the first release in releases that satisfies c.
//
// releases must be ordered newest first; the first match wins and no sorting
// happens here (see SortNewestFirst). Tags containing a hyphen are treated as
// pre-releases and skipped, as are tags that do not look like a version.
func SelectRelease(releases []release.Release, c *Constraint) (*semver.Version, error) {
	for _, rel := range releases {
		if strings.Contains(rel.TagName, "-") {
			continue
		}
		v, ok := Coerce(rel.TagName)
		if !ok {
			continue
		}
		if c.Check(v) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", c, ErrNoMatchingRelease)
}

// Coerce extracts a major.minor.patch version from a tag, tolerating a
// leading prefix and missing components ("v1.2" is 1.2.0). Anything after
// the patch number is dropped.
func Coerce(tag string) (*semver.Version, bool) {
	m := coerceRegex.FindStringSubmatch(tag)
	if m == nil {
		return nil, false
	}

	var nums [3]uint64
	for i, s := range m[1:] {
		if s == "" {
			continue
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = n
	}
	return semver.New(nums[0], nums[1], nums[2], "", ""), true
}

// SortNewestFirst returns a copy of releases ordered by descending semantic
// version. Tags that are not semantic versions keep their relative order and
// go last.
func SortNewestFirst(releases []release.Release) []release.Release {
	sorted := make([]release.Release, len(releases))
	copy(sorted, releases)

	canon := func(tag string) string {
		return "v" + strings.TrimPrefix(tag, "v")
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := canon(sorted[i].TagName), canon(sorted[j].TagName)
		aok, bok := modsemver.IsValid(a), modsemver.IsValid(b)
		switch {
		case aok && bok:
			return modsemver.Compare(a, b) > 0
		default:
			return aok && !bok
		}
	})
	return sorted
}
