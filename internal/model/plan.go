package model

// PlanAction is the operation the engine will (or would) take for one file.
type PlanAction string

// Plan action constants.
const (
	ActionMove          PlanAction = "move"
	ActionCopy          PlanAction = "copy"
	ActionSkipDuplicate PlanAction = "skip-duplicate"
	ActionSkipConflict  PlanAction = "skip-conflict"
	ActionRenameSuffix  PlanAction = "rename-suffix"
)

// Mutates reports whether executing this action touches the filesystem.
func (a PlanAction) Mutates() bool {
	return a == ActionMove || a == ActionCopy || a == ActionRenameSuffix
}

// FileState tracks a candidate through the engine's per-file pipeline.
type FileState string

// File state constants. Executed, Simulated and Failed are terminal.
const (
	StateDiscovered       FileState = "discovered"
	StateExtracted        FileState = "extracted"
	StateClassified       FileState = "classified"
	StateDuplicateChecked FileState = "duplicate_checked"
	StatePlanned          FileState = "planned"
	StateExecuted         FileState = "executed"
	StateSimulated        FileState = "simulated"
	StateFailed           FileState = "failed"
)

// ConflictPolicy is the configured strategy for a destination path that
// already exists and holds a different file than the source.
type ConflictPolicy string

// Conflict policy constants.
const (
	ConflictSkip      ConflictPolicy = "skip"
	ConflictOverwrite ConflictPolicy = "overwrite"
	ConflictRename    ConflictPolicy = "rename"
)

// OperationPlan is the planner's verdict for one file: where it goes and
// how. Produced once per file and executed at most once.
type OperationPlan struct {
	SourcePath      string     `json:"source_path"`
	DestinationPath string     `json:"destination_path,omitempty"`
	Category        string     `json:"category"`
	MatchedRule     string     `json:"matched_rule,omitempty"`
	Fingerprint     string     `json:"fingerprint,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	Action          PlanAction `json:"action"`
	State           FileState  `json:"state"`
	DryRun          bool       `json:"dry_run"`
}
