package model

import "fmt"

// CriterionKind identifies how a criterion tests a file's attributes.
type CriterionKind string

// Criterion kind constants.
const (
	CriterionPattern      CriterionKind = "pattern"
	CriterionExtension    CriterionKind = "extension"
	CriterionKeyword      CriterionKind = "keyword"
	CriterionNumericRange CriterionKind = "numeric_range"
)

// PatternTarget selects what a pattern criterion is matched against.
type PatternTarget string

// Pattern target constants.
const (
	TargetName PatternTarget = "name"
	TargetPath PatternTarget = "path"
)

// RangeField selects which numeric attribute a numeric_range criterion
// compares.
type RangeField string

// Range field constants.
const (
	FieldSize    RangeField = "size"
	FieldAgeDays RangeField = "age_days"
)

// Criterion is one weighted test inside a rule. A criterion either matches
// or it does not; there is no partial credit.
type Criterion struct {
	Min        *float64      `yaml:"min,omitempty"`
	Max        *float64      `yaml:"max,omitempty"`
	Kind       CriterionKind `yaml:"kind" validate:"required,oneof=pattern extension keyword numeric_range"`
	Pattern    string        `yaml:"pattern,omitempty"`
	Target     PatternTarget `yaml:"target,omitempty"`
	Field      RangeField    `yaml:"field,omitempty"`
	Extensions []string      `yaml:"extensions,omitempty"`
	Keywords   []string      `yaml:"keywords,omitempty"`
	Weight     int           `yaml:"weight" validate:"gte=1"`
	IsRegex    bool          `yaml:"regex,omitempty"`
}

// Rule maps files to a category folder through a set of weighted criteria.
// Rules are configuration-loaded and immutable during a run.
type Rule struct {
	Name     string      `yaml:"name" validate:"required"`
	Folder   string      `yaml:"folder,omitempty"`
	Criteria []Criterion `yaml:"criteria" validate:"required,min=1,dive"`
	Priority int         `yaml:"priority"`
}

// CategoryFolder returns the destination folder for files matched by this
// rule, falling back to the rule name when no folder is configured.
func (r Rule) CategoryFolder() string {
	if r.Folder != "" {
		return r.Folder
	}
	return r.Name
}

// Validate checks the semantic constraints that struct tags cannot express.
func (r Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	for i, c := range r.Criteria {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("rule %q criterion %d: %w", r.Name, i, err)
		}
	}
	return nil
}

// Validate checks a single criterion's semantic constraints.
func (c Criterion) Validate() error {
	if c.Weight <= 0 {
		return fmt.Errorf("weight must be positive, got %d", c.Weight)
	}
	switch c.Kind {
	case CriterionPattern:
		if c.Pattern == "" {
			return fmt.Errorf("pattern criterion requires a pattern")
		}
		if c.Target != "" && c.Target != TargetName && c.Target != TargetPath {
			return fmt.Errorf("pattern target must be %q or %q, got %q", TargetName, TargetPath, c.Target)
		}
	case CriterionExtension:
		if len(c.Extensions) == 0 {
			return fmt.Errorf("extension criterion requires at least one extension")
		}
	case CriterionKeyword:
		if len(c.Keywords) == 0 {
			return fmt.Errorf("keyword criterion requires at least one keyword")
		}
	case CriterionNumericRange:
		if c.Field != FieldSize && c.Field != FieldAgeDays {
			return fmt.Errorf("numeric_range field must be %q or %q, got %q", FieldSize, FieldAgeDays, c.Field)
		}
		if c.Min == nil && c.Max == nil {
			return fmt.Errorf("numeric_range requires at least one of min, max")
		}
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return fmt.Errorf("numeric_range min %v exceeds max %v", *c.Min, *c.Max)
		}
	default:
		return fmt.Errorf("unknown criterion kind %q", c.Kind)
	}
	return nil
}
