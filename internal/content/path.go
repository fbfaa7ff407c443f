package content

import (
	"strconv"

	"github.com/gosimple/slug"
)

const fallbackPath = "post"

// reservedPaths are served by fixed routes under /posts and can never name a post
var reservedPaths = map[string]bool{
	"saved": true,
	"like":  true,
}

// PathFromTitle builds the URL path of a post from its title
func PathFromTitle(title string) string {
	p := slug.Make(title)
	if p == "" {
		return fallbackPath
	}
	return p
}

// UniquePath returns base, or base suffixed with -2, -3... until the candidate is
// neither reserved nor reported by taken
func UniquePath(base string, taken func(string) (bool, error)) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		if reservedPaths[candidate] {
			candidate = base + "-" + strconv.Itoa(n)
			continue
		}
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}
