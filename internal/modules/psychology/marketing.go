package psychology

import (
	"math"
	"regexp"
	"strings"
)

// Marketing copy decisions.
const (
	DecisionConsider = "CONSIDER"
	DecisionReject   = "REJECT"
)

// MarketingEvaluation is the outcome of information-cue analysis on ad copy.
type MarketingEvaluation struct {
	Text            string   `json:"text"`
	CueCount        int      `json:"cue_count"`
	Decision        string   `json:"decision"` // CONSIDER or REJECT
	MatchedCues     []string `json:"matched_cues"`
	ConfidenceScore float64  `json:"confidence_score"`
	Reason          string   `json:"reason"`
}

// High-information cues common in German retail copy.
var cueKeywords = map[string]bool{
	"bio": true, "iso": true, "din": true, "tuv": true, "tuv-gepruft": true,
	"ce": true, "fsc": true, "ecolabel": true, "haccp": true,
	"guarantee": true, "warranty": true, "class": true, "energy": true,
	"eur/kg": true, "€/kg": true, "per kg": true,
	"g": true, "kg": true, "ml": true, "l": true,
	"specification": true, "protein": true, "fat": true, "kcal": true,
}

var (
	numberPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\b`)
	specPattern   = regexp.MustCompile(`(?i)\b(?:\d+(?:[.,]\d+)?\s?(?:€|eur|%|kg|g|l|ml|w|v|kwh|cm|mm|m2|kcal)|iso\s?\d{3,5}(?:-\d+)?|din\s?[a-z0-9-]+|energy\s?class\s?[a-g]\+{0,3})\b`)
	tokenPattern  = regexp.MustCompile(`\b\w+(?:-\w+)?\b`)
)

// CountInformationCues counts concrete information cues in ad copy: bare
// numbers, unit/certification specifications, and known high-information
// keywords. The decision threshold mirrors high uncertainty-avoidance market
// norms.
func (c *Consumer) CountInformationCues(text string) MarketingEvaluation {
	normalized := strings.ToLower(text)

	var matched []string
	matched = append(matched, numberPattern.FindAllString(normalized, -1)...)
	matched = append(matched, specPattern.FindAllString(normalized, -1)...)
	for _, token := range tokenPattern.FindAllString(normalized, -1) {
		if cueKeywords[token] {
			matched = append(matched, token)
		}
	}

	cueCount := len(matched)
	decision := DecisionReject
	reason := "Too vague for high uncertainty-avoidance market norms."
	if cueCount >= InfoCueThreshold {
		decision = DecisionConsider
		reason = "Sufficient concrete detail to reduce perceived purchase risk."
	}

	confidence := sigmoid(float64(cueCount-InfoCueThreshold) / 1.6)
	confidence = math.Min(0.99, math.Max(0.01, confidence))

	return MarketingEvaluation{
		Text:            text,
		CueCount:        cueCount,
		Decision:        decision,
		MatchedCues:     matched,
		ConfidenceScore: confidence,
		Reason:          reason,
	}
}

// EvaluateMarketingCopy returns REJECT when information cues fall below the
// threshold, else CONSIDER.
func (c *Consumer) EvaluateMarketingCopy(text string) string {
	return c.CountInformationCues(text).Decision
}
