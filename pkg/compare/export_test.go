package compare

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFileName(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "rotacio_differences_20240305_140709.xlsx", FileName(ts))
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(time.Now()))
	diffs := []Difference{
		{Iden: num("2"), RotacioPre: num("5"), RotacioDev: num("9"), ObjectIDPre: 11, ObjectIDDev: 21},
		{Iden: "B-7", RotacioPre: num("1.5"), RotacioDev: nil, ObjectIDPre: 12, ObjectIDDev: 22},
	}

	require.NoError(t, Export(path, diffs))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"iden", "rotacio_pre", "rotacio_dev", "objectid_pre", "objectid_dev"}, rows[0])
	assert.Equal(t, []string{"2", "5", "9", "11", "21"}, rows[1])
	assert.Equal(t, []string{"B-7", "1.5", "", "12", "22"}, rows[2])
}

func TestExport_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Export(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExport_BadPath(t *testing.T) {
	err := Export(filepath.Join(t.TempDir(), "missing", "out.xlsx"), nil)
	assert.Error(t, err)
}
