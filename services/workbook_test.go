package services

import (
	"testing"
	"time"

	"reception-dedup/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDuplicateWorkbook(t *testing.T) {
	content := "printer broken"
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	groups := []models.DuplicateGroup{{
		GroupID:        "group_0",
		DuplicateCount: 2,
		DuplicateKey:   content,
		Records: []models.ReceptionRecord{
			{ID: 1, Content: &content, Status: "open", ReceptionTime: &at},
			{ID: 2, Content: &content, Status: "closed"},
		},
	}}

	f, err := BuildDuplicateWorkbook(map[models.DuplicateType][]models.DuplicateGroup{models.DuplicateContent: groups})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"content"}, f.GetSheetList())
	rows, err := f.GetRows("content")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "group_id", rows[0][0])
	assert.Equal(t, []string{"group_0", "2", "printer broken", "1", "printer broken", "open"}, rows[1][:6])
	assert.Equal(t, "2024-05-01 10:00:00", rows[1][12])
	assert.Equal(t, "2", rows[2][3])
}

func TestBuildDuplicateWorkbookEmptyGroups(t *testing.T) {
	f, err := BuildDuplicateWorkbook(map[models.DuplicateType][]models.DuplicateGroup{models.DuplicateExact: {}})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("exact")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(workbookHeader))
}
