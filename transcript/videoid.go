package transcript

import (
	"regexp"

	"github.com/kbukum/clipkit/errors"
)

var videoIDPattern = regexp.MustCompile(`(?:v=|/|youtu\.be/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID returns the 11 character YouTube video id embedded in a
// watch, short or embed URL.
func ExtractVideoID(url string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", errors.InvalidInput("url", "malformed URL: no video id found")
	}
	return m[1], nil
}
