package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRecordsProjectsRows(t *testing.T) {
	loc := tokyo(t)
	at := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	rows := newFakeRows(append(allColumns(false), "extra"),
		append(recordRow(7, "printer broken", "open", at), "ignored"),
		append(recordRow(8, nil, "", at), nil),
	)

	got, err := scanRecords(rows, loc, false)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0].Record
	assert.Equal(t, int64(7), first.ID)
	require.NotNil(t, first.Content)
	assert.Equal(t, "printer broken", *first.Content)
	assert.Equal(t, "open", first.Status)
	assert.Nil(t, first.SystemType)
	assert.Nil(t, first.ReceptionModTime)
	assert.False(t, first.Deleted())
	require.NotNil(t, first.ReceptionTime)
	// Wanduhrzeit bleibt erhalten, nur die Zone wird ersetzt
	assert.Equal(t, 9, first.ReceptionTime.Hour())
	assert.Equal(t, loc, first.ReceptionTime.Location())

	assert.Nil(t, got[1].Record.Content)
}

func TestScanRecordsMissingColumn(t *testing.T) {
	rows := newFakeRows([]string{"id", "content"})

	_, err := scanRecords(rows, time.UTC, false)
	require.Error(t, err)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "status", de.Column)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestScanRecordsMissingDuplicateColumn(t *testing.T) {
	rows := newFakeRows(allColumns(false))

	_, err := scanRecords(rows, time.UTC, true)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestScanRecordsMistypedColumn(t *testing.T) {
	row := recordRow(1, "x", "", time.Now())
	row[0] = "not-a-number"
	rows := newFakeRows(allColumns(false), row)

	_, err := scanRecords(rows, time.UTC, false)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
}

func TestScanRecordsNullID(t *testing.T) {
	row := recordRow(1, "x", "", time.Now())
	row[0] = nil
	rows := newFakeRows(allColumns(false), row)

	_, err := scanRecords(rows, time.UTC, false)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "id", de.Column)
}

func TestScanRecordsDuplicateFields(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := newFakeRows(allColumns(true), duplicateRow(3, "A", "open", at, 2, 3, "A|open"))

	got, err := scanRecords(rows, time.UTC, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].PartitionCount)
	assert.Equal(t, int64(3), got[0].PartitionID)
	assert.Equal(t, "A|open", got[0].Key)
}
