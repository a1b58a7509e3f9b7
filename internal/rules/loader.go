package rules

import (
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nazjaz/curator/internal/common"
	"github.com/nazjaz/curator/internal/model"
)

// RuleFile is the on-disk YAML shape of a rule set.
type RuleFile struct {
	UnknownFolder string       `yaml:"unknown_folder" validate:"omitempty"`
	Rules         []model.Rule `yaml:"rules" validate:"required,min=1,dive"`
	MinScore      int          `yaml:"min_score" validate:"gte=0"`
}

// Load reads, parses and validates a YAML rule file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates raw YAML rule data and builds a RuleSet.
func Parse(data []byte) (*RuleSet, error) {
	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	if len(file.Rules) == 0 {
		return nil, common.ErrNoRules
	}

	validate := validator.New()
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidRule, err)
	}

	for _, rule := range file.Rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidRule, err)
		}
		if err := checkPatterns(rule); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidRule, err)
		}
	}

	return New(file.Rules, file.MinScore, file.UnknownFolder), nil
}

// checkPatterns rejects regex patterns that will not compile, so failures
// surface at load time rather than mid-batch.
func checkPatterns(rule model.Rule) error {
	for i, c := range rule.Criteria {
		if c.Kind != model.CriterionPattern || !c.IsRegex {
			continue
		}
		if _, err := regexp.Compile(c.Pattern); err != nil {
			return fmt.Errorf("rule %q criterion %d: bad regex %q: %v", rule.Name, i, c.Pattern, err)
		}
	}
	return nil
}
