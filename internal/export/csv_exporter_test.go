package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ps-vitor/espc-sys/internal/domain"
	"github.com/ps-vitor/espc-sys/pkg/logger"
)

func sampleListings() domain.ResultSet {
	return domain.ResultSet{
		{
			OfferType: "Offers Over", Price: "£200,000", PropertyType: "Flat",
			Address: "1 High Street", Town: "Edinburgh", Postcode: "EH1 1AA", Area: "EH1",
			Beds: "2", Toilets: "1", LivingRooms: "1", Description: "Bright, first floor flat",
			Link: "https://espc.com/property/1", Parking: true, Agent: "Gilson Gray",
		},
		{
			OfferType: "Fixed Price", Price: "£150,000", PropertyType: "Maisonette",
			Address: "9 Rue Café", Town: "Leith", Postcode: "EH6 6SW", Area: "EH6",
			Beds: "3", Toilets: "U", LivingRooms: "U", Description: "Quiet street",
			Link: "https://espc.com/property/2", Allocated: true, Agent: domain.AgentUnknown,
		},
	}
}

func readCSV(t *testing.T, path string) (string, [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "missing BOM")

	rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	return string(data), rows
}

func TestExportWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "espc.csv")
	var logs bytes.Buffer
	e := NewCSVExporter(path, logger.NewWithWriter(&logs, "export"))

	n, err := e.Export(sampleListings())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ListingColumns, rows[0])
	assert.Equal(t, []string{
		"Offers Over", "£200,000", "Flat", "1 High Street", "Edinburgh", "EH1 1AA", "EH1",
		"2", "1", "1", "Bright, first floor flat", "https://espc.com/property/1", "True", "False", "Gilson Gray",
	}, rows[1])
	assert.Equal(t, "9 Rue Café", rows[2][3])
	assert.Equal(t, "N/A", rows[2][14])
	assert.Contains(t, logs.String(), "Saving 2 items to csv file ("+path+")...")
}

func TestExportDedupesOnAgentAddressPrice(t *testing.T) {
	listings := sampleListings()
	repeat := listings[0]
	repeat.Description = "Same flat, relisted"
	repeat.Link = "https://espc.com/property/3"
	otherAgent := listings[0]
	otherAgent.Agent = "Rettie"
	listings = append(listings, repeat, otherAgent)

	path := filepath.Join(t.TempDir(), "espc.csv")
	n, err := NewCSVExporter(path, logger.Discard()).Export(listings)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, "Bright, first floor flat", rows[1][10])
	assert.Equal(t, "Rettie", rows[3][14])
}

func TestExportEmptyWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "espc.csv")
	var logs bytes.Buffer

	n, err := NewCSVExporter(path, logger.NewWithWriter(&logs, "export")).Export(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	raw, rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, "\ufeff"+strings.Join(domain.ListingColumns, ",")+"\n", raw)
	assert.Contains(t, logs.String(), "Saving 0 items")
}

func TestExportOverwritesPreviousFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "espc.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,data\n1,2\n3,4\n5,6\n"), 0o644))

	_, err := NewCSVExporter(path, logger.Discard()).Export(sampleListings()[:1])
	require.NoError(t, err)

	_, rows := readCSV(t, path)
	assert.Len(t, rows, 2)
}

func TestEncodeDoesNotDedupe(t *testing.T) {
	listings := sampleListings()
	listings = append(listings, listings[0])

	var buf bytes.Buffer
	n, err := Encode(&buf, listings)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
