package ingest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/ingest"
	"github.com/citybike/warehouse/internal/transform"
)

const sampleCSV = `Trip Duration,Start Time,Stop Time,Start Station ID,Start Station Name,Start Station Latitude,Start Station Longitude,End Station ID,End Station Name,End Station Latitude,End Station Longitude,Bike ID,User Type,Birth Year,Gender,Trip_Duration_in_min
600,2023-06-10 08:15:00,2023-06-10 08:25:00,1,Grove St PATH,40.7196,-74.0434,2,Exchange Place,40.7162,-74.0334,101,Subscriber,1990,1,10
900,2023-06-10 09:00:00,2023-06-10 09:15:00,2,Exchange Place,40.7162,-74.0334,1,Grove St PATH,40.7196,-74.0434,102,Customer,,0,15
`

func TestReadCSV(t *testing.T) {
	src, err := ingest.ReadCSV(strings.NewReader(sampleCSV))

	require.NoError(t, err)
	assert.Equal(t, domain.RequiredColumns, src.Columns)
	require.Len(t, src.Records, 2)

	first := src.Records[0]
	assert.Equal(t, "600", first[domain.ColTripDuration])
	assert.Equal(t, "Grove St PATH", first[domain.ColStartName])
	assert.Equal(t, "1990", first[domain.ColBirthYear])

	// Empty cells stay empty strings; staging decides what null means.
	assert.Equal(t, "", src.Records[1][domain.ColBirthYear])
}

func TestReadCSV_emptyInput(t *testing.T) {
	_, err := ingest.ReadCSV(strings.NewReader(""))

	require.Error(t, err)
	assert.ErrorContains(t, err, "no header row")
}

func TestReadCSV_raggedRow(t *testing.T) {
	_, err := ingest.ReadCSV(strings.NewReader("a,b,c\n1,2\n"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "line 2")
}

func TestReadCSV_headerOnly(t *testing.T) {
	src, err := ingest.ReadCSV(strings.NewReader("a,b,c\n"))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, src.Columns)
	assert.Empty(t, src.Records)
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw_rides.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	src, err := ingest.ReadCSVFile(path)

	require.NoError(t, err)
	assert.Len(t, src.Records, 2)
}

func TestReadCSVFile_missing(t *testing.T) {
	_, err := ingest.ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
}

func TestSample(t *testing.T) {
	src := ingest.Sample(24)

	assert.Equal(t, domain.RequiredColumns, src.Columns)
	require.Len(t, src.Records, 24)
	require.NoError(t, transform.RequireColumns(src.Columns))

	// Generated records must survive normalization without parse errors.
	staged, parseErrors := transform.Normalize(src.Records)
	assert.Len(t, staged, 24)
	assert.Zero(t, parseErrors)
}

func TestSample_deterministic(t *testing.T) {
	assert.Equal(t, ingest.Sample(10), ingest.Sample(10))
}
