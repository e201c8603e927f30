package snapshot

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func eucKR(t *testing.T, s string) []byte {
	t.Helper()
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return encoded
}

// writeSnapshot builds a .db3 file the way the terminal does: text columns
// carrying EUC-KR bytes.
func writeSnapshot(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "AceViewer.db3")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE employee (
		empl_cd BLOB, empl_nm BLOB, part_nm BLOB, jijo_nm BLOB, gojo_nm BLOB, last_dt BLOB
	)`)
	require.NoError(t, err)

	for _, row := range rows {
		_, err = db.Exec(`INSERT INTO employee VALUES (?, ?, ?, ?, ?, ?)`, row...)
		require.NoError(t, err)
	}

	return path
}

func TestParseDecodesLegacyEncoding(t *testing.T) {
	path := writeSnapshot(t, [][]interface{}{
		{
			eucKR(t, "25000001"),
			eucKR(t, "김우현"),
			eucKR(t, "미래도시건설"),
			eucKR(t, "형틀"),
			eucKR(t, "철근콘크리트"),
			eucKR(t, "2026-02-06 07:32:49"),
		},
	})

	records, err := Parse(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "25000001", record.ExternalWorkerID)
	assert.Equal(t, "김우현", record.Name)
	require.NotNil(t, record.CompanyName)
	assert.Equal(t, "미래도시건설", *record.CompanyName)
	require.NotNil(t, record.Position)
	assert.Equal(t, "형틀", *record.Position)
	require.NotNil(t, record.Trade)
	assert.Equal(t, "철근콘크리트", *record.Trade)
	require.NotNil(t, record.LastSeen)
	assert.Equal(t, "2026-02-06 07:32:49", *record.LastSeen)
}

func TestParseDropsPlaceholderRows(t *testing.T) {
	path := writeSnapshot(t, [][]interface{}{
		{eucKR(t, "25000001"), eucKR(t, "김우현"), nil, nil, nil, nil},
		{nil, eucKR(t, "이름만"), nil, nil, nil, nil},
		{eucKR(t, "25000002"), nil, nil, nil, nil, nil},
		{eucKR(t, ""), eucKR(t, "빈코드"), nil, nil, nil, nil},
	})

	records, err := Parse(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "25000001", records[0].ExternalWorkerID)
}

func TestParseFallsBackOnUndecodableColumn(t *testing.T) {
	// 0x80 is not a valid EUC-KR lead byte; the column keeps its raw bytes
	// while the rest of the row still decodes.
	corrupt := []byte{'A', 0x80, 'B'}
	path := writeSnapshot(t, [][]interface{}{
		{eucKR(t, "25000003"), eucKR(t, "박민수"), corrupt, nil, nil, nil},
	})

	records, err := Parse(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "박민수", records[0].Name)
	require.NotNil(t, records[0].CompanyName)
	assert.Equal(t, string(corrupt), *records[0].CompanyName)
}

func TestParseInvalidFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db3")
	require.NoError(t, os.WriteFile(path, []byte("this is not a database"), 0o644))

	records, err := Parse(context.Background(), path)
	assert.Error(t, err)
	assert.Nil(t, records)
}

func TestGetStats(t *testing.T) {
	path := writeSnapshot(t, [][]interface{}{
		{eucKR(t, "1"), eucKR(t, "가"), eucKR(t, "미래도시건설"), nil, nil, eucKR(t, "2026-02-01 08:00:00")},
		{eucKR(t, "2"), eucKR(t, "나"), eucKR(t, "제일건설"), nil, nil, eucKR(t, "2026-02-06 07:32:49")},
		{eucKR(t, "3"), eucKR(t, "다"), eucKR(t, "제일건설"), nil, nil, nil},
	})

	stats, err := GetStats(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalRows)
	assert.ElementsMatch(t, []string{"미래도시건설", "제일건설"}, stats.Companies)
	require.NotNil(t, stats.LastSeen)
	assert.Equal(t, "2026-02-06 07:32:49", *stats.LastSeen)
}
