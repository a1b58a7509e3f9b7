// Package rules loads and validates classification rule sets.
package rules

import (
	"sort"
	"strings"

	"github.com/nazjaz/curator/internal/model"
)

// DefaultMinScore is the winning-score threshold applied when a rule file
// does not set one.
const DefaultMinScore = 1

// DefaultUnknownFolder receives files no rule claims.
const DefaultUnknownFolder = "Unsorted"

// RuleSet is an ordered collection of rules with the thresholds that govern
// classification. The evaluation order is fixed at construction: priority
// descending, then declaration order ascending. Ties between equal scores
// resolve to the rule earlier in this order.
type RuleSet struct {
	UnknownFolder string
	rules         []model.Rule
	MinScore      int
}

// New builds a RuleSet with the evaluation order fixed for the run.
func New(rules []model.Rule, minScore int, unknownFolder string) *RuleSet {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if unknownFolder == "" {
		unknownFolder = DefaultUnknownFolder
	}

	ordered := make([]model.Rule, len(rules))
	copy(ordered, rules)

	// Stable sort keeps declaration order for equal priorities.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	return &RuleSet{
		rules:         ordered,
		MinScore:      minScore,
		UnknownFolder: unknownFolder,
	}
}

// Rules returns the rules in evaluation order.
func (rs *RuleSet) Rules() []model.Rule {
	return rs.rules
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// KeywordVocabulary returns the lower-cased union of every keyword used by
// keyword criteria across the set. The attribute extractor scans file
// content for exactly these terms.
func (rs *RuleSet) KeywordVocabulary() []string {
	seen := make(map[string]struct{})
	var vocab []string
	for _, rule := range rs.rules {
		for _, c := range rule.Criteria {
			if c.Kind != model.CriterionKeyword {
				continue
			}
			for _, kw := range c.Keywords {
				kw = strings.ToLower(kw)
				if _, ok := seen[kw]; ok {
					continue
				}
				seen[kw] = struct{}{}
				vocab = append(vocab, kw)
			}
		}
	}
	return vocab
}
