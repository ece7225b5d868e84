package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses everything outside [a-z0-9]
// into single hyphens.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// UniqueSlugSuffix disambiguates a taken slug with a base36 timestamp.
func UniqueSlugSuffix(slug string) string {
	return slug + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}
