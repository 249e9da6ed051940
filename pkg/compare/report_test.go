package compare

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	diffs := []Difference{
		{Iden: num("2"), RotacioPre: num("5"), RotacioDev: num("9"), ObjectIDPre: 11, ObjectIDDev: 21},
		{Iden: "X-1", RotacioPre: nil, RotacioDev: num("1"), ObjectIDPre: 12, ObjectIDDev: 22},
	}

	require.NoError(t, Print(&buf, diffs))

	want := "\nFound 2 records with different rotacio values:\n" +
		"iden: 2\n" +
		"  Pre rotacio: 5\n" +
		"  Dev rotacio: 9\n" +
		"  Dev objectid: 21\n" +
		"\n" +
		"iden: X-1\n" +
		"  Pre rotacio: null\n" +
		"  Dev rotacio: 1\n" +
		"  Dev objectid: 22\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestPrint_NoDifferences(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, nil))
	assert.Equal(t, "\nFound 0 records with different rotacio values:\n", buf.String())
}
