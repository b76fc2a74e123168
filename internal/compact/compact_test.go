package compact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sqlask/internal/dbexec"
)

func TestEncodePassThrough(t *testing.T) {
	testCases := []struct {
		name string
		res  dbexec.Result
		want string
	}{
		{
			name: "empty",
			res:  dbexec.Result{Columns: []string{"id"}, Rows: [][]any{}},
			want: `[]`,
		},
		{
			name: "single row",
			res: dbexec.Result{
				Columns: []string{"total", "category"},
				Rows:    [][]any{{19.75, "food"}},
			},
			want: `[{"category":"food","total":19.75}]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, Compacted(tc.res))
			got, err := Encode(tc.res)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeTable(t *testing.T) {
	res := dbexec.Result{
		Columns: []string{"id", "category", "note"},
		Rows: [][]any{
			{int64(1), "food", "lunch, with team"},
			{int64(2), "travel", nil},
			{int64(3), "food", `said "hi"`},
		},
	}
	require.True(t, Compacted(res))

	got, err := Encode(res)
	require.NoError(t, err)
	want := "rows[3]{id,category,note}:\n" +
		"  1,food,\"lunch, with team\"\n" +
		"  2,travel,\n" +
		"  3,food,\"said \"\"hi\"\"\""
	assert.Equal(t, want, got)
}

func TestEncodeTableTruncated(t *testing.T) {
	res := dbexec.Result{
		Columns:   []string{"n"},
		Rows:      [][]any{{int64(1)}, {int64(2)}},
		Truncated: true,
	}
	got, err := Encode(res)
	require.NoError(t, err)
	assert.Equal(t, "rows[2]{n}: (truncated)\n  1\n  2", got)
}

func TestEncodeTableKeepsEveryRow(t *testing.T) {
	res := dbexec.Result{Columns: []string{"n"}}
	for i := 0; i < 50; i++ {
		res.Rows = append(res.Rows, []any{int64(i)})
	}
	got, err := Encode(res)
	require.NoError(t, err)
	assert.Contains(t, got, "rows[50]{n}:")
	assert.Contains(t, got, "\n  0\n")
	assert.Contains(t, got, "\n  49")
}

func TestEncodeTableMultilineCell(t *testing.T) {
	res := dbexec.Result{
		Columns: []string{"id", "note"},
		Rows: [][]any{
			{int64(1), "a\nb"},
			{int64(2), "first, line\r\nsecond"},
		},
	}
	got, err := Encode(res)
	require.NoError(t, err)
	want := "rows[2]{id,note}:\n" +
		"  1,a\\nb\n" +
		"  2,\"first, line\\nsecond\""
	assert.Equal(t, want, got)
	assert.Len(t, strings.Split(got, "\n"), 3)
}
