package responder

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultFallback is returned when no rule matches.
const DefaultFallback = "I do not understand what you wrote..."

// Rule maps a set of trigger substrings to a canned reply.
type Rule struct {
	Triggers []string `json:"triggers"`
	Reply    string   `json:"reply"`
}

// DefaultRules returns the built-in rule table in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Triggers: []string{"hello"}, Reply: "Hey there!"},
		{Triggers: []string{"how are you"}, Reply: "I am good!"},
		{Triggers: []string{"rtu"}, Reply: "RTU stands for Remote Terminal Unit, a device used in industrial control systems."},
		{Triggers: []string{"service"}, Reply: "RTUServiceBot provides support for your RTU-related needs."},
		{Triggers: []string{"i love python"}, Reply: "Remember to subscribe!"},
		{Triggers: []string{"coding", "programming"}, Reply: "Coding is fun! Keep practicing every day."},
	}
}

// Responder maps free text to a canned reply using an ordered rule table.
// It is safe for concurrent use.
type Responder struct {
	mu       sync.RWMutex
	rules    []Rule
	fallback string
}

// New creates a Responder. A blank fallback is replaced by DefaultFallback.
func New(rules []Rule, fallback string) *Responder {
	r := &Responder{}
	r.SetRules(rules, fallback)
	return r
}

// Default creates a Responder with the built-in rules.
func Default() *Responder {
	return New(DefaultRules(), DefaultFallback)
}

// SetRules replaces the rule table.
func (r *Responder) SetRules(rules []Rule, fallback string) {
	lowered := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		triggers := make([]string, 0, len(rule.Triggers))
		for _, t := range rule.Triggers {
			triggers = append(triggers, lower(t))
		}
		lowered = append(lowered, Rule{Triggers: triggers, Reply: rule.Reply})
	}
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallback
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = lowered
	r.fallback = fallback
}

// Respond returns the reply of the first rule with a trigger contained in text,
// or the fallback. The result is never empty.
func (r *Responder) Respond(text string) string {
	processed := lower(text)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		for _, t := range rule.Triggers {
			if strings.Contains(processed, t) {
				return rule.Reply
			}
		}
	}
	return r.fallback
}

// Rules returns a copy of the current (lowercased) rule table.
func (r *Responder) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// lower is untailored Unicode lowercasing, not case folding: "ſ" stays "ſ".
// A Caser is stateful, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
