// Package scoring implements keyword-frequency scoring for intent, urgency,
// document subtype and sentiment.
package scoring

import (
	"math"
	"strings"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/rules"
	"github.com/mikey/intake-pipeline/internal/utils"
)

// BaseConfidence is the confidence of a General classification and the
// floor added to every keyword-derived confidence
const BaseConfidence = 0.3

// Scorer evaluates text against a rule set it owns
type Scorer struct {
	rules rules.Rules
}

// NewScorer creates a Scorer over a private copy of r
func NewScorer(r rules.Rules) *Scorer {
	return &Scorer{rules: r.Clone()}
}

// CountMatches counts how many keywords occur in lowerText. Each keyword is
// counted once no matter how often it occurs, and independently of other
// keywords it overlaps with.
func CountMatches(lowerText string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lowerText, kw) {
			n++
		}
	}
	return n
}

// ContainsAny reports whether any keyword occurs in lowerText
func ContainsAny(lowerText string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

// Intent picks the intent with the strictly highest match count, keeping the
// first-declared intent on ties. It returns General when nothing matches.
func (s *Scorer) Intent(text string) (core.Intent, int) {
	lower := utils.Lower(text)
	best := core.IntentGeneral
	bestCount := 0
	for _, rule := range s.rules.Intents {
		if n := CountMatches(lower, rule.Keywords); n > bestCount {
			best = rule.Intent
			bestCount = n
		}
	}
	return best, bestCount
}

// Confidence converts a match count for intent into a score in [0.3, 1.0]
// rounded to two decimals
func (s *Scorer) Confidence(intent core.Intent, matched int) float64 {
	if intent == core.IntentGeneral {
		return BaseConfidence
	}
	keywords := s.rules.KeywordsFor(intent)
	if len(keywords) == 0 {
		return BaseConfidence
	}
	c := math.Min(float64(matched)/float64(len(keywords))+BaseConfidence, 1.0)
	return math.Round(c*100) / 100
}

// Urgency applies the high, medium, low ladder
func (s *Scorer) Urgency(text string) core.Urgency {
	lower := utils.Lower(text)
	switch {
	case ContainsAny(lower, s.rules.HighUrgency):
		return core.UrgencyHigh
	case ContainsAny(lower, s.rules.MediumUrgency):
		return core.UrgencyMedium
	default:
		return core.UrgencyLow
	}
}

// EmailIntent applies the fixed-priority intent rule used for messages
func (s *Scorer) EmailIntent(text string) core.Intent {
	lower := utils.Lower(text)
	for _, rule := range s.rules.EmailIntents {
		if ContainsAny(lower, rule.Keywords) {
			return rule.Intent
		}
	}
	return core.IntentGeneral
}

// DocumentType returns the first document subtype whose keywords occur
func (s *Scorer) DocumentType(text string) string {
	lower := utils.Lower(text)
	for _, rule := range s.rules.DocumentTypes {
		if ContainsAny(lower, rule.Keywords) {
			return rule.Type
		}
	}
	return s.rules.DefaultDocument
}

// Sentiment compares positive and negative word presence
func (s *Scorer) Sentiment(text string) core.Sentiment {
	lower := utils.Lower(text)
	pos := CountMatches(lower, s.rules.PositiveWords)
	neg := CountMatches(lower, s.rules.NegativeWords)
	switch {
	case pos > neg:
		return core.SentimentPositive
	case neg > pos:
		return core.SentimentNegative
	default:
		return core.SentimentNeutral
	}
}
