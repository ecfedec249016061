package slot

import "strings"

// Outcome is the normalized form of a caller's answer to a yes/no step.
type Outcome string

const (
	OutcomeYes     Outcome = "yes"
	OutcomeNo      Outcome = "no"
	OutcomeValid   Outcome = "valid"
	OutcomeInvalid Outcome = "invalid"
)

// Fixed vocabularies for yes/no normalization. The affirmative list is
// checked first; a token added to both lists resolves to affirmative.
var (
	affirmative = wordSet("yes", "yeah", "yep", "yea", "correct", "right", "sure", "ok", "okay", "si", "true")
	negative    = wordSet("no", "nope", "nah", "incorrect", "wrong", "negative", "never", "false")
)

// Normalize lower-cases and tokenizes the response and maps it to "yes",
// "no" or "invalid". A response counts as yes/no when any of its tokens
// intersects the corresponding vocabulary, affirmative checked first.
func Normalize(text string) Outcome {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return OutcomeInvalid
	}
	for _, tok := range tokens {
		if affirmative[tok] {
			return OutcomeYes
		}
	}
	for _, tok := range tokens {
		if negative[tok] {
			return OutcomeNo
		}
	}
	return OutcomeInvalid
}

// tokenize splits on anything that is not a letter, lower-casing as it goes.
// "Yes." and " yes " both yield ["yes"].
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// MatchChoice matches a free-form answer against a fixed option list:
// exact match on the trimmed lower-cased response first, then token
// intersection. Returns the matched option.
func MatchChoice(text string, options []string) (string, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	for _, opt := range options {
		if cleaned == strings.ToLower(opt) {
			return opt, true
		}
	}
	for _, tok := range tokenize(text) {
		for _, opt := range options {
			if tok == strings.ToLower(opt) {
				return opt, true
			}
		}
	}
	return "", false
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
