// Package classify scores file attributes against a rule set and resolves
// the winning category.
package classify

import (
	"path"
	"regexp"
	"strings"

	"github.com/nazjaz/curator/internal/model"
	"github.com/nazjaz/curator/internal/rules"
)

// compiledRule pairs a rule with its pre-compiled regex criteria, indexed
// by criterion position.
type compiledRule struct {
	regexes map[int]*regexp.Regexp
	rule    model.Rule
}

// Classifier evaluates attribute bundles against a fixed-order rule set.
// Classification is a pure function of the bundle: no filesystem access, no
// clock reads, no randomness.
type Classifier struct {
	ruleset  *rules.RuleSet
	compiled []compiledRule
}

// New creates a classifier, pre-compiling every regex pattern criterion.
// Patterns that fail to compile are treated as never matching; the loader
// rejects them up front, so this only arises for rule sets built in code.
func New(rs *rules.RuleSet) *Classifier {
	compiled := make([]compiledRule, 0, rs.Len())
	for _, rule := range rs.Rules() {
		cr := compiledRule{rule: rule, regexes: make(map[int]*regexp.Regexp)}
		for i, c := range rule.Criteria {
			if c.Kind == model.CriterionPattern && c.IsRegex {
				if re, err := regexp.Compile(c.Pattern); err == nil {
					cr.regexes[i] = re
				}
			}
		}
		compiled = append(compiled, cr)
	}

	return &Classifier{
		ruleset:  rs,
		compiled: compiled,
	}
}

// Classify scores the bundle against every rule in evaluation order and
// returns the decision. On an exact score tie the rule encountered first
// wins; a best score below the configured minimum routes the file to the
// unknown folder.
func (c *Classifier) Classify(bundle model.AttributeBundle) model.ClassificationDecision {
	bestScore := 0
	var bestRule *model.Rule

	for i := range c.compiled {
		cr := &c.compiled[i]
		score := c.scoreRule(cr, bundle)
		// Strictly greater keeps the first rule in evaluation order on
		// ties, so results never depend on iteration accidents.
		if score > bestScore {
			bestScore = score
			bestRule = &cr.rule
		}
	}

	if bestRule == nil || bestScore < c.ruleset.MinScore {
		return model.ClassificationDecision{
			File:           bundle.Candidate,
			Score:          bestScore,
			CategoryFolder: c.ruleset.UnknownFolder,
			IsUnknown:      true,
		}
	}

	return model.ClassificationDecision{
		File:           bundle.Candidate,
		MatchedRule:    bestRule.Name,
		Score:          bestScore,
		CategoryFolder: bestRule.CategoryFolder(),
	}
}

// scoreRule sums the weights of the rule's matching criteria. A criterion
// either matches or it does not; there is no partial credit.
func (c *Classifier) scoreRule(cr *compiledRule, bundle model.AttributeBundle) int {
	score := 0
	for i, criterion := range cr.rule.Criteria {
		if c.matches(cr, i, criterion, bundle) {
			score += criterion.Weight
		}
	}
	return score
}

func (c *Classifier) matches(cr *compiledRule, idx int, criterion model.Criterion, bundle model.AttributeBundle) bool {
	switch criterion.Kind {
	case model.CriterionPattern:
		return c.matchesPattern(cr, idx, criterion, bundle)
	case model.CriterionExtension:
		return matchesExtension(criterion, bundle)
	case model.CriterionKeyword:
		return matchesKeyword(criterion, bundle)
	case model.CriterionNumericRange:
		return matchesRange(criterion, bundle)
	}
	return false
}

// matchesPattern tests a glob or regex against the filename or the full
// relative path, per the criterion's target.
func (c *Classifier) matchesPattern(cr *compiledRule, idx int, criterion model.Criterion, bundle model.AttributeBundle) bool {
	subject := strings.ToLower(bundle.Candidate.Name())
	if criterion.Target == model.TargetPath {
		subject = strings.ToLower(bundle.Candidate.RelativePath)
	}

	if criterion.IsRegex {
		re, ok := cr.regexes[idx]
		if !ok {
			return false
		}
		return re.MatchString(subject)
	}

	ok, err := path.Match(strings.ToLower(criterion.Pattern), subject)
	return err == nil && ok
}

func matchesExtension(criterion model.Criterion, bundle model.AttributeBundle) bool {
	ext := bundle.Candidate.Extension
	for _, want := range criterion.Extensions {
		if strings.EqualFold(want, ext) {
			return true
		}
	}
	return false
}

// matchesKeyword checks each keyword against the filename tokens, the
// lower-cased filename itself, and the content keyword signal.
func matchesKeyword(criterion model.Criterion, bundle model.AttributeBundle) bool {
	name := strings.ToLower(bundle.Candidate.Name())
	for _, kw := range criterion.Keywords {
		kw = strings.ToLower(kw)
		if bundle.HasToken(kw) || strings.Contains(name, kw) || bundle.HasContentKeyword(kw) {
			return true
		}
	}
	return false
}

// matchesRange tests the bundle's size or age against an inclusive range;
// a nil bound leaves that side open.
func matchesRange(criterion model.Criterion, bundle model.AttributeBundle) bool {
	var value float64
	switch criterion.Field {
	case model.FieldSize:
		value = float64(bundle.Candidate.SizeBytes)
	case model.FieldAgeDays:
		value = float64(bundle.AgeDays)
	default:
		return false
	}

	if criterion.Min != nil && value < *criterion.Min {
		return false
	}
	if criterion.Max != nil && value > *criterion.Max {
		return false
	}
	return true
}
