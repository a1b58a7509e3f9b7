package model

// ClassificationDecision records the outcome of scoring one file against a
// rule set. One decision is produced per file per run and never mutated.
type ClassificationDecision struct {
	File           FileCandidate
	MatchedRule    string
	CategoryFolder string
	Score          int
	IsUnknown      bool
}
