// Package model defines the core data structures for the curator engine.
package model

import "time"

// FileCandidate is an immutable snapshot of one file discovered during a
// scan. It is created once by the directory walk and never re-read; all
// downstream stages work from this snapshot so that files moved mid-run
// cannot invalidate iteration.
type FileCandidate struct {
	ModifiedTime time.Time
	CreatedTime  time.Time
	AbsolutePath string
	RelativePath string
	Extension    string
	SizeBytes    int64
	NestingDepth int
}

// Name returns the candidate's base filename.
func (c FileCandidate) Name() string {
	for i := len(c.RelativePath) - 1; i >= 0; i-- {
		if c.RelativePath[i] == '/' || c.RelativePath[i] == '\\' {
			return c.RelativePath[i+1:]
		}
	}
	return c.RelativePath
}

// AttributeBundle is the derived, read-only view of a candidate that the
// classifier scores against. It is owned by the classify invocation that
// created it and never mutated afterwards.
type AttributeBundle struct {
	Candidate        FileCandidate
	DetectedEncoding string
	DetectedMIME     string
	ExtractionError  string
	FilenameTokens   []string
	ContentKeywords  []string
	AgeDays          int
}

// HasToken reports whether the lower-cased token was extracted from the
// candidate's filename.
func (b AttributeBundle) HasToken(token string) bool {
	for _, t := range b.FilenameTokens {
		if t == token {
			return true
		}
	}
	return false
}

// HasContentKeyword reports whether the keyword was found in the
// candidate's content sample.
func (b AttributeBundle) HasContentKeyword(keyword string) bool {
	for _, k := range b.ContentKeywords {
		if k == keyword {
			return true
		}
	}
	return false
}
