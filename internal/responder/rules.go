package responder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidRule is returned when a rule file contains an unusable rule.
var ErrInvalidRule = errors.New("invalid rule")

// RuleFile is the on-disk rule table.
type RuleFile struct {
	Fallback string `json:"fallback"`
	Rules    []Rule `json:"rules"`
}

// LoadRules reads a JSON rule file.
// Returns nil, nil if the file does not exist.
func LoadRules(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rf RuleFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	if err := validateRules(rf.Rules); err != nil {
		return nil, err
	}
	return &rf, nil
}

// An empty trigger would match every message and shadow all later rules.
func validateRules(rules []Rule) error {
	if len(rules) == 0 {
		return fmt.Errorf("%w: rules file has no rules", ErrInvalidRule)
	}
	for i, r := range rules {
		if strings.TrimSpace(r.Reply) == "" {
			return fmt.Errorf("%w: rule at index %d missing reply", ErrInvalidRule, i)
		}
		if len(r.Triggers) == 0 {
			return fmt.Errorf("%w: rule at index %d has no triggers", ErrInvalidRule, i)
		}
		for _, t := range r.Triggers {
			if strings.TrimSpace(t) == "" {
				return fmt.Errorf("%w: rule at index %d has a blank trigger", ErrInvalidRule, i)
			}
		}
	}
	return nil
}

// FromFile builds a Responder from path, or the built-in rules when path is
// empty or the file does not exist.
func FromFile(path string) (*Responder, error) {
	if path == "" {
		return Default(), nil
	}
	rf, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	if rf == nil {
		return Default(), nil
	}
	return New(rf.Rules, rf.Fallback), nil
}
