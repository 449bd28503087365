package parse

import (
	"regexp"
	"strconv"
)

// seasonEpisodePattern matches the first s<NN>e<NN> token. Two or more digits
// per group; matching is case-insensitive because callers may pass
// display-form strings.
var seasonEpisodePattern = regexp.MustCompile(`(?i)\bs(\d{2,})e(\d{2,})\b`)

// ExtractEpisode returns the season and episode numbers from the first
// s<NN>e<NN> token in the normalized filename, scanning left to right. A
// missing or malformed token yields ok=false; that is the movie signal, not
// an error. Both values must be positive: s00e00-style tokens are rejected.
func ExtractEpisode(normalized string) (season, episode int, ok bool) {
	match := seasonEpisodePattern.FindStringSubmatch(normalized)
	if match == nil {
		return 0, 0, false
	}
	season, err := strconv.Atoi(match[1])
	if err != nil || season <= 0 {
		return 0, 0, false
	}
	episode, err = strconv.Atoi(match[2])
	if err != nil || episode <= 0 {
		return 0, 0, false
	}
	return season, episode, true
}
