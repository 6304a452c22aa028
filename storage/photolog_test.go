package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/errors"
	"github.com/c360/groundctl/message"
)

func tempLogPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "photos.log")
}

func TestOpenFreshFileStartsAtZero(t *testing.T) {
	log, err := Open(tempLogPath(t))
	require.NoError(t, err)
	defer log.Close()

	assert.Equal(t, int32(0), log.NextIndex())
}

func TestAppendAssignsSequentialIndexes(t *testing.T) {
	log, err := Open(tempLogPath(t))
	require.NoError(t, err)
	defer log.Close()

	for i := int32(0); i < 5; i++ {
		index, err := log.Append(float64(i), -float64(i))
		require.NoError(t, err)
		assert.Equal(t, i, index)
	}
	assert.Equal(t, int32(5), log.NextIndex())
}

func TestRecoveryAfterRestart(t *testing.T) {
	path := tempLogPath(t)

	log, err := Open(path)
	require.NoError(t, err)
	const n = 7
	for i := 0; i < n; i++ {
		_, err := log.Append(10.5, -20.25)
		require.NoError(t, err)
	}
	require.NoError(t, log.Close())

	// Restart: recovery scans the file and resumes at N.
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, int32(n), reopened.NextIndex())

	index, err := reopened.Append(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(n), index, "first write after restart uses index N exactly")
}

func TestScanReadsBackRecords(t *testing.T) {
	log, err := Open(tempLogPath(t))
	require.NoError(t, err)
	defer log.Close()

	_, err = log.Append(55.5, -120.25)
	require.NoError(t, err)
	_, err = log.Append(-33.0, 18.5)
	require.NoError(t, err)

	records, err := log.Scan()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{Index: 0, Lat: 55.5, Lon: -120.25}, records[0])
	assert.Equal(t, Record{Index: 1, Lat: -33.0, Lon: 18.5}, records[1])
	assert.Equal(t, "photo1", records[1].Label())
}

func TestTruncatedTailIsCleanEOF(t *testing.T) {
	path := tempLogPath(t)

	log, err := Open(path)
	require.NoError(t, err)
	_, err = log.Append(1, 1)
	require.NoError(t, err)
	_, err = log.Append(2, 2)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	// Chop bytes off the last record to simulate a crash mid-append.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-5))

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, int32(1), reopened.NextIndex(),
		"only the intact first record counts; the torn tail is end-of-file")

	records, err := reopened.Scan()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int32(0), records[0].Index)
}

func TestTruncatedLabelIsCleanEOF(t *testing.T) {
	path := tempLogPath(t)

	log, err := Open(path)
	require.NoError(t, err)
	_, err = log.Append(1, 1)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	// Leave only the length prefix and part of the label.
	require.NoError(t, os.Truncate(path, 6))

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, int32(0), reopened.NextIndex())
}

func TestAppendAfterCloseFails(t *testing.T) {
	log, err := Open(tempLogPath(t))
	require.NoError(t, err)
	require.NoError(t, log.Close())

	_, err = log.Append(1, 1)
	assert.True(t, errors.Is(err, errors.ErrLogClosed))
}

func TestArchiveAppendsOnAddPhoto(t *testing.T) {
	log, err := Open(tempLogPath(t))
	require.NoError(t, err)
	defer log.Close()

	archive := NewArchive(component.Dependencies{}, log)

	require.NoError(t, archive.HandleMessage(
		message.New("dispatcher", archive.Name(), message.OpAddPhoto,
			&message.PhotoPoint{Lat: 42.0, Lon: 17.0})))

	records, err := log.Scan()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 42.0, records[0].Lat)
}

func TestArchiveIgnoresOtherOperations(t *testing.T) {
	log, err := Open(tempLogPath(t))
	require.NoError(t, err)
	defer log.Close()

	archive := NewArchive(component.Dependencies{}, log)
	require.NoError(t, archive.HandleMessage(
		message.New("x", archive.Name(), message.OpGetStatus, &message.Empty{})))

	assert.Equal(t, int32(0), log.NextIndex())
}

func TestArchiveSurvivesWriteFailure(t *testing.T) {
	log, err := Open(tempLogPath(t))
	require.NoError(t, err)
	require.NoError(t, log.Close()) // force Append to fail

	archive := NewArchive(component.Dependencies{}, log)
	require.NoError(t, archive.HandleMessage(
		message.New("dispatcher", archive.Name(), message.OpAddPhoto,
			&message.PhotoPoint{Lat: 1, Lon: 1})),
		"write failures are logged, not returned")
}
