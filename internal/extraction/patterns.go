package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Policy document patterns.
var (
	// numberedLineRe marks a line as numbered; such lines never become
	// section headers.
	numberedLineRe = regexp.MustCompile(`^\d+\.`)

	// requirementRe matches "<n>. <text>".
	requirementRe = regexp.MustCompile(`^(\d+)\.\s+(.*)`)

	// moneyRe matches "$" followed by digits and commas.
	moneyRe = regexp.MustCompile(`\$([0-9,]+)`)

	// durationRe matches "<n> <unit>" with an optional plural s.
	durationRe = regexp.MustCompile(`(?i)(\d+)\s+(day|hour|minute|business day|week|month|year)s?`)

	// percentRe matches "<n>%".
	percentRe = regexp.MustCompile(`(\d+)%`)
)

// roleVocabulary is matched case-insensitively as substrings of a
// requirement. Overlapping terms ("officer", "Senior Loan Officer") each
// produce a role.
var roleVocabulary = []string{
	"customer",
	"employee",
	"officer",
	"team",
	"Senior Loan Officer",
	"fraud detection team",
	"user",
}

// Generic document patterns.
var (
	paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

	dateRe = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{1,2} (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{2,4})\b`)

	// orgRe is a noisy heuristic: two or more consecutive title-case words.
	orgRe = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`)

	// quantityRe matches a number followed by a unit. Word units need a
	// trailing word boundary; symbol units do not.
	quantityRe = regexp.MustCompile(`(?i)\b(\d+(?:,\d+)*(?:\.\d+)?)\s*(percent\b|%|dollars\b|usd\b|\$|euros\b|eur\b|€|units\b|items\b|kg\b|km\b|miles\b)`)

	// wordRe matches key-term candidates in lower-cased text.
	wordRe = regexp.MustCompile(`\b[a-z]{4,}\b`)
)

// contextRunes is the length of the paragraph snippet stored on generic
// entities.
const contextRunes = 100

// capitalize upper-cases the first rune and leaves the rest unchanged.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// snippet returns at most n runes of s.
func snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// containsFold reports whether substr occurs in s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
