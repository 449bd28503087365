package parse

import (
	"regexp"
	"sort"
	"strings"

	"subtis/internal/textutil"
)

// defaultQualityTokens lists the single-word quality/source markers that end a
// title fragment. Separator folding happens before isolation, so compound
// markers like "WEB-DL" arrive as the individual tokens "web" and "dl".
var defaultQualityTokens = []string{
	// resolution
	"480p", "576p", "720p", "1080p", "1080i", "2160p", "4k", "uhd",
	"hdr", "hdr10", "dv", "10bit", "8bit",
	// source medium
	"bluray", "blu", "bdrip", "brrip", "bdremux", "remux",
	"web", "webrip", "webdl", "dl", "hdtv", "tvrip", "pdtv",
	"dvd", "dvdrip", "hdrip", "vhs", "vhsrip",
	// codecs
	"x264", "x265", "h264", "h265", "hevc", "avc", "av1", "xvid", "divx",
	// audio
	"aac", "ac3", "eac3", "dts", "dd5", "ddp5", "truehd", "atmos", "flac", "mp3", "opus",
	// release flags
	"proper", "repack", "rerip", "extended", "unrated", "uncut", "remastered",
	"limited", "internal", "retail", "complete", "multi", "dual", "subbed", "dubbed",
	// streaming service tags
	"nf", "amzn", "dsnp", "hmax", "atvp", "hulu",
	// common groups/trackers
	"yify", "yts", "rarbg", "ettv", "eztv", "galaxytv", "evo",
}

// yearPattern matches a plausible release year token.
var yearPattern = regexp.MustCompile(`^(19|20)\d{2}$`)

// nonAlphanumPattern collapses any remaining punctuation after ASCII folding.
var nonAlphanumPattern = regexp.MustCompile(`[^a-z0-9]+`)

// TitleIsolator trims a normalized filename down to its best-guess title
// fragment, pulling out the release year and collecting the residual
// quality tokens.
type TitleIsolator struct {
	quality map[string]struct{}
}

// NewTitleIsolator builds an isolator over the default quality vocabulary plus
// any extra tokens.
func NewTitleIsolator(extra ...string) *TitleIsolator {
	quality := make(map[string]struct{}, len(defaultQualityTokens)+len(extra))
	for _, token := range defaultQualityTokens {
		quality[token] = struct{}{}
	}
	for _, token := range extra {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			quality[token] = struct{}{}
		}
	}
	return &TitleIsolator{quality: quality}
}

// Isolate extracts the title fragment from the portion of a normalized
// filename preceding any season/episode token. Diacritics are folded to
// ASCII and residual punctuation becomes spaces, so the fragment contains
// only alphanumerics separated by single spaces.
//
// The title ends at the release year when one is present, or at the first
// known quality token otherwise. Everything after that boundary, minus the
// year itself, is returned as residual tokens for relevance scoring.
func (ti *TitleIsolator) Isolate(normalized string) (title string, year int, residual []string) {
	tokens := cleanTokens(normalized)
	if len(tokens) == 0 {
		return "", 0, nil
	}

	yearIdx := -1
	for i, token := range tokens {
		// A leading year is part of the title ("2012", "1917").
		if i > 0 && yearPattern.MatchString(token) {
			yearIdx = i
		}
	}
	if yearIdx >= 0 {
		year = atoiYear(tokens[yearIdx])
	}

	boundary := len(tokens)
	if yearIdx >= 0 {
		boundary = yearIdx
	}
	for i, token := range tokens {
		if i >= boundary {
			break
		}
		if _, ok := ti.quality[token]; ok {
			boundary = i
			break
		}
	}

	for i := boundary; i < len(tokens); i++ {
		if i == yearIdx {
			continue
		}
		residual = append(residual, tokens[i])
	}
	return strings.Join(tokens[:boundary], " "), year, residual
}

// ResidualTokens cleans an arbitrary trailing segment into residual tokens,
// used for the portion of a filename after the season/episode marker.
func (ti *TitleIsolator) ResidualTokens(segment string) []string {
	return cleanTokens(segment)
}

// Vocabulary returns the active quality tokens, sorted.
func (ti *TitleIsolator) Vocabulary() []string {
	tokens := make([]string, 0, len(ti.quality))
	for token := range ti.quality {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// IsQualityToken reports whether the token belongs to the quality vocabulary.
func (ti *TitleIsolator) IsQualityToken(token string) bool {
	_, ok := ti.quality[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

func cleanTokens(segment string) []string {
	folded := strings.ToLower(textutil.FoldASCII(segment))
	folded = nonAlphanumPattern.ReplaceAllString(folded, " ")
	return strings.Fields(folded)
}

func atoiYear(token string) int {
	year := 0
	for _, r := range token {
		year = year*10 + int(r-'0')
	}
	return year
}
