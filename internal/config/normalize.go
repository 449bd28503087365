package config

import "strings"

// normalize expands paths and tidies user-supplied values ahead of
// validation.
func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatcher()
	c.normalizeVocabulary()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	expandedData, err := expandPath(c.Paths.DataDir)
	if err != nil {
		return err
	}
	c.Paths.DataDir = expandedData

	expandedLog, err := expandPath(c.Paths.LogDir)
	if err != nil {
		return err
	}
	c.Paths.LogDir = expandedLog
	return nil
}

func (c *Config) normalizeMatcher() {
	if c.Matcher.FuzzyThreshold == 0 {
		c.Matcher.FuzzyThreshold = defaultFuzzyThreshold
	}
	if c.Matcher.YearTolerance < 0 {
		c.Matcher.YearTolerance = defaultYearTolerance
	}
}

func (c *Config) normalizeVocabulary() {
	c.Vocabulary.RecordingMarkers = cleanList(c.Vocabulary.RecordingMarkers)
	c.Vocabulary.QualityTokens = cleanList(c.Vocabulary.QualityTokens)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
