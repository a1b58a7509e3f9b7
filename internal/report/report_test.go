package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazjaz/curator/internal/model"
)

func samplePlans() []model.OperationPlan {
	return []model.OperationPlan{
		{
			SourcePath:      "/inbox/report.pdf",
			DestinationPath: "/sorted/Documents/report.pdf",
			Category:        "Documents",
			MatchedRule:     "Documents",
			Action:          model.ActionMove,
			State:           model.StateExecuted,
			Fingerprint:     "fp-1",
		},
		{
			SourcePath:  "/inbox/copy-of-report.pdf",
			Category:    "Documents",
			MatchedRule: "Documents",
			Action:      model.ActionSkipDuplicate,
			State:       model.StateExecuted,
			Fingerprint: "fp-1",
			Reason:      "duplicate content in category",
		},
		{
			SourcePath:      "/inbox/photo.jpg",
			DestinationPath: "/sorted/Images/photo.jpg",
			Category:        "Images",
			MatchedRule:     "Images",
			Action:          model.ActionMove,
			State:           model.StateExecuted,
			Fingerprint:     "fp-2",
		},
	}
}

func TestWriteJSON(t *testing.T) {
	stats := model.RunStatistics{Scanned: 3, Classified: 3, DuplicatesFound: 1, Moved: 2, Skipped: 1}

	var buf bytes.Buffer
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, WriteJSON(&buf, stats, samplePlans(), true, now))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.True(t, got.DryRun)
	assert.True(t, got.GeneratedAt.Equal(now))
	assert.Equal(t, stats, got.Stats)
	assert.Len(t, got.Plans, 3)
	assert.Equal(t, 2, got.Actions[string(model.ActionMove)])
	assert.Equal(t, 1, got.Actions[string(model.ActionSkipDuplicate)])
}

func TestWriteJSON_EmptyRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, model.RunStatistics{}, nil, false, time.Now()))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Empty(t, got.Plans)
	assert.Empty(t, got.Actions)
}

func TestWriteManifestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteManifestCSV(&buf, samplePlans()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"source", "destination", "category", "rule", "action", "state", "fingerprint", "reason"}, records[0])
	assert.Equal(t, "/inbox/report.pdf", records[1][0])
	assert.Equal(t, "/sorted/Documents/report.pdf", records[1][1])
	assert.Equal(t, string(model.ActionMove), records[1][4])
	assert.Equal(t, "duplicate content in category", records[2][7])
}
