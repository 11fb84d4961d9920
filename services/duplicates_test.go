package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"reception-dedup/models"
	"reception-dedup/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDetectionQueryPerType(t *testing.T) {
	tests := []struct {
		typ       models.DuplicateType
		partition string
		exclusion string
	}{
		{models.DuplicateExact, "PARTITION BY receptbody.rdata, COALESCE(execbody.execstate, '')", ""},
		{models.DuplicateContent, "PARTITION BY receptbody.rdata", "receptbody.rdata IS NOT NULL AND receptbody.rdata != ''"},
		{models.DuplicateStatus, "PARTITION BY COALESCE(execbody.execstate, '')", "COALESCE(execbody.execstate, '') != ''"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			q, args, err := detectionQuery(tt.typ, models.Filter{}, "", "")
			require.NoError(t, err)
			assert.Contains(t, q, tt.partition)
			assert.Contains(t, q, tt.exclusion)
			assert.Contains(t, q, "WHERE duplicate_count > 1")
			assert.Contains(t, q, "ORDER BY duplicate_key, partition_id, id")
			assert.Empty(t, args)
		})
	}
}

func TestDetectionQueryExactKeepsNullContentApart(t *testing.T) {
	q, _, err := detectionQuery(models.DuplicateExact, models.Filter{}, "", "")
	require.NoError(t, err)
	// NULL und '' bilden getrennte Partitionen, teilen aber die Signatur
	assert.NotContains(t, q, "PARTITION BY COALESCE(receptbody.rdata")
	assert.Contains(t, q, "CONCAT(COALESCE(receptbody.rdata, ''), '|', COALESCE(execbody.execstate, ''))")
	assert.Contains(t, q, "MIN(recepthead.extentid) OVER (PARTITION BY receptbody.rdata, COALESCE(execbody.execstate, ''))")
}

func TestDetectionQueryAlwaysExcludesDeleted(t *testing.T) {
	for _, include := range []bool{false, true} {
		q, _, err := detectionQuery(models.DuplicateExact, models.Filter{IncludeDeleted: include}, "", "")
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(q, "recepthead.receptmoddt IS NULL"))
	}
}

func TestDetectionQueryBindsFilter(t *testing.T) {
	q, args, err := detectionQuery(models.DuplicateContent,
		models.Filter{ContentKeyword: "printer", Product: "A"}, "content,product", "desc,asc")
	require.NoError(t, err)
	assert.Equal(t, strings.Count(q, "?"), len(args))
	assert.Equal(t, []any{"%printer%", "A"}, args)
	assert.Contains(t, q, "ORDER BY duplicate_key, partition_id, content DESC, product ASC")
}

func TestDetectionQueryInvalidType(t *testing.T) {
	_, _, err := detectionQuery("fuzzy", models.Filter{}, "", "")
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func newTestDuplicateService(store Store) *DuplicateService {
	return NewDuplicateService(store, time.UTC, zap.NewNop())
}

func TestDetectExactDuplicates(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{queryFn: func(string, []any) (storage.Rows, error) {
		// Datensatz 3 hat einen anderen Status und bildet keine Klasse
		return newFakeRows(allColumns(true),
			duplicateRow(1, "A", "open", at, 2, 1, "A|open"),
			duplicateRow(2, "A", "open", at, 2, 1, "A|open"),
		), nil
	}}

	groups, err := newTestDuplicateService(store).Detect(context.Background(), models.DuplicateExact, models.Filter{}, "", "")
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "group_0", g.GroupID)
	assert.Equal(t, 2, g.DuplicateCount)
	assert.Equal(t, "A|open", g.DuplicateKey)
	require.Len(t, g.Records, 2)
	assert.Equal(t, int64(1), g.Records[0].ID)
	assert.Equal(t, int64(2), g.Records[1].ID)
	for _, r := range g.Records {
		require.NotNil(t, r.DuplicateType)
		assert.Equal(t, models.DuplicateExact, *r.DuplicateType)
		require.NotNil(t, r.DuplicateKey)
		assert.Equal(t, "A|open", *r.DuplicateKey)
	}
	assert.Equal(t, 2, TotalRecords(groups))
}

func TestDetectContentDuplicates(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{queryFn: func(string, []any) (storage.Rows, error) {
		return newFakeRows(allColumns(true),
			duplicateRow(1, "A", "open", at, 3, 1, "A"),
			duplicateRow(2, "A", "open", at, 3, 1, "A"),
			duplicateRow(3, "A", "closed", at, 3, 1, "A"),
		), nil
	}}

	groups, err := newTestDuplicateService(store).Detect(context.Background(), models.DuplicateContent, models.Filter{}, "", "")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].DuplicateCount)
	assert.Len(t, groups[0].Records, 3)
}

func TestDetectNoDuplicates(t *testing.T) {
	store := &fakeStore{queryFn: func(string, []any) (storage.Rows, error) {
		return newFakeRows(allColumns(true)), nil
	}}

	groups, err := newTestDuplicateService(store).Detect(context.Background(), models.DuplicateStatus, models.Filter{}, "", "")
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestGroupDuplicatesSplitsByPartition(t *testing.T) {
	// gleiche Signatur, aber verschiedene Partitionen ("a|b" + "c" vs. "a" + "b|c")
	rows := []scannedRecord{
		{Record: models.ReceptionRecord{ID: 1}, PartitionCount: 2, PartitionID: 1, Key: "a|b|c"},
		{Record: models.ReceptionRecord{ID: 4}, PartitionCount: 2, PartitionID: 1, Key: "a|b|c"},
		{Record: models.ReceptionRecord{ID: 2}, PartitionCount: 2, PartitionID: 2, Key: "a|b|c"},
		{Record: models.ReceptionRecord{ID: 3}, PartitionCount: 2, PartitionID: 2, Key: "a|b|c"},
	}

	groups := groupDuplicates(rows, models.DuplicateExact)
	require.Len(t, groups, 2)
	assert.Equal(t, "group_0", groups[0].GroupID)
	assert.Equal(t, "group_1", groups[1].GroupID)
	for _, g := range groups {
		assert.Len(t, g.Records, g.DuplicateCount)
	}
}

func TestDetectExactNullAndEmptyContentStaySeparate(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{queryFn: func(string, []any) (storage.Rows, error) {
		// 1+2 ohne Inhalt (NULL), 3+4 mit leerem Inhalt; gleiche Signatur "|open"
		return newFakeRows(allColumns(true),
			duplicateRow(1, nil, "open", at, 2, 1, "|open"),
			duplicateRow(2, nil, "open", at, 2, 1, "|open"),
			duplicateRow(3, "", "open", at, 2, 3, "|open"),
			duplicateRow(4, "", "open", at, 2, 3, "|open"),
		), nil
	}}

	groups, err := newTestDuplicateService(store).Detect(context.Background(), models.DuplicateExact, models.Filter{}, "", "")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []int64{1, 2}, []int64{groups[0].Records[0].ID, groups[0].Records[1].ID})
	assert.Equal(t, []int64{3, 4}, []int64{groups[1].Records[0].ID, groups[1].Records[1].ID})
	assert.Equal(t, "|open", groups[0].DuplicateKey)
	assert.Equal(t, "|open", groups[1].DuplicateKey)
}

func TestDetectStoreError(t *testing.T) {
	store := &fakeStore{queryFn: func(string, []any) (storage.Rows, error) {
		return nil, errors.New("connection refused")
	}}

	_, err := newTestDuplicateService(store).Detect(context.Background(), models.DuplicateExact, models.Filter{}, "", "")
	require.Error(t, err)
	assert.False(t, IsInputError(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDetectInvalidTypeRunsNoQuery(t *testing.T) {
	store := &fakeStore{}

	_, err := newTestDuplicateService(store).Detect(context.Background(), "fuzzy", models.Filter{}, "", "")
	assert.True(t, IsInputError(err))
	assert.Empty(t, store.queries)
}
