package rules

import "github.com/nazjaz/curator/internal/model"

// Default returns the built-in rule set used when no rule file is
// configured. It covers the common household categories so a first run
// produces something sensible without any setup.
func Default() *RuleSet {
	return New([]model.Rule{
		{
			Name:     "Documents",
			Priority: 10,
			Criteria: []model.Criterion{
				{Kind: model.CriterionExtension, Weight: 2, Extensions: []string{".pdf", ".doc", ".docx", ".odt", ".txt", ".md", ".rtf"}},
			},
		},
		{
			Name:     "Financial",
			Priority: 20,
			Criteria: []model.Criterion{
				{Kind: model.CriterionKeyword, Weight: 3, Keywords: []string{"invoice", "receipt", "statement", "tax"}},
				{Kind: model.CriterionExtension, Weight: 1, Extensions: []string{".pdf", ".csv", ".xlsx"}},
			},
		},
		{
			Name:     "Images",
			Priority: 10,
			Criteria: []model.Criterion{
				{Kind: model.CriterionExtension, Weight: 2, Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".svg"}},
			},
		},
		{
			Name:     "Audio",
			Priority: 10,
			Criteria: []model.Criterion{
				{Kind: model.CriterionExtension, Weight: 2, Extensions: []string{".mp3", ".flac", ".wav", ".m4a", ".ogg"}},
			},
		},
		{
			Name:     "Video",
			Priority: 10,
			Criteria: []model.Criterion{
				{Kind: model.CriterionExtension, Weight: 2, Extensions: []string{".mp4", ".mkv", ".mov", ".avi", ".webm"}},
			},
		},
		{
			Name:     "Archives",
			Priority: 10,
			Criteria: []model.Criterion{
				{Kind: model.CriterionExtension, Weight: 2, Extensions: []string{".zip", ".tar", ".gz", ".7z", ".rar"}},
			},
		},
		{
			Name:     "Code",
			Priority: 10,
			Criteria: []model.Criterion{
				{Kind: model.CriterionExtension, Weight: 2, Extensions: []string{".go", ".py", ".js", ".ts", ".rs", ".c", ".h", ".sh"}},
			},
		},
	}, DefaultMinScore, DefaultUnknownFolder)
}
