package service

import (
	"strings"

	"github.com/goatkit/goatchat/internal/models"
)

// Intent names produced by the predictor.
const (
	IntentGreeting       = "greeting"
	IntentFarewell       = "farewell"
	IntentThanks         = "thanks"
	IntentOrderStatus    = "order_status"
	IntentBilling        = "billing"
	IntentTechnicalIssue = "technical_issue"
	IntentHumanHandoff   = "human_handoff"
	IntentUnknown        = "unknown"
)

// intentRule maps an intent to the keywords that trigger it. Rules are
// evaluated in order; the first intent with a match wins ties on count.
type intentRule struct {
	intent   string
	keywords []string
}

var defaultIntentRules = []intentRule{
	{IntentHumanHandoff, []string{"human", "agent", "real person", "representative", "speak to someone"}},
	{IntentOrderStatus, []string{"order", "delivery", "shipping", "package", "tracking", "shipped"}},
	{IntentBilling, []string{"bill", "billing", "invoice", "charge", "payment", "refund", "price"}},
	{IntentTechnicalIssue, []string{"error", "bug", "broken", "crash", "not working", "doesn't work", "login", "password"}},
	{IntentGreeting, []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}},
	{IntentFarewell, []string{"bye", "goodbye", "see you", "that's all", "nothing else"}},
	{IntentThanks, []string{"thank", "thanks", "appreciate"}},
}

// IntentPredictor is the rule-based intent lookup. There is no trained model
// behind it: intents come from keyword matching and the confidence is a
// simple heuristic over match counts.
type IntentPredictor struct {
	rules []intentRule
}

// NewIntentPredictor creates a predictor with the built-in rule set.
func NewIntentPredictor() *IntentPredictor {
	return &IntentPredictor{rules: defaultIntentRules}
}

// Predict returns the best-matching intent for a message. Deterministic:
// the same text always yields the same prediction.
func (p *IntentPredictor) Predict(text string) models.IntentPrediction {
	lowered := strings.ToLower(text)

	best := models.IntentPrediction{Intent: IntentUnknown, Confidence: 0}
	bestMatches := 0

	for _, rule := range p.rules {
		matches := 0
		for _, kw := range rule.keywords {
			if containsWord(lowered, kw) {
				matches++
			}
		}
		if matches > bestMatches {
			bestMatches = matches
			best = models.IntentPrediction{
				Intent:     rule.intent,
				Confidence: confidenceFor(matches),
			}
		}
	}
	return best
}

// containsWord reports whether the keyword occurs in the text on word
// boundaries, so "hi" does not match "shipping".
func containsWord(text, keyword string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)

		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '\''
}

func confidenceFor(matches int) float64 {
	c := 0.6 + 0.15*float64(matches)
	if c > 0.95 {
		c = 0.95
	}
	return c
}
