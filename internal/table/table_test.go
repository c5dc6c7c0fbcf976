package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(t *Table, col string) []string {
	out := make([]string, t.Len())
	for i := range out {
		c := t.Get(i, col)
		if c.Valid {
			out[i] = c.Value
		} else {
			out[i] = "<nil>"
		}
	}
	return out
}

func TestCell(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.False(t, Null().Valid)
	assert.Equal(t, "x", Of("x").String())
	assert.True(t, Of("").Valid)
}

func TestNew_IgnoresRepeatedColumns(t *testing.T) {
	tbl := New("a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
}

func TestAppend_PadsAndTruncates(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append([]Cell{Of("1")})
	tbl.Append([]Cell{Of("1"), Of("2"), Of("3")})

	require.Equal(t, 2, tbl.Len())
	assert.False(t, tbl.Get(0, "b").Valid)
	assert.Len(t, tbl.Row(1), 2)
}

func TestAddColumn_FillsNulls(t *testing.T) {
	tbl := New("a")
	tbl.Append([]Cell{Of("1")})

	assert.True(t, tbl.AddColumn("b"))
	assert.False(t, tbl.AddColumn("b"))
	assert.Equal(t, []string{"<nil>"}, values(tbl, "b"))
}

func TestGet_UnknownColumnIsNull(t *testing.T) {
	tbl := New("a")
	tbl.Append([]Cell{Of("1")})
	assert.False(t, tbl.Get(0, "missing").Valid)
}

func TestSet_AddsColumn(t *testing.T) {
	tbl := New("a")
	tbl.Append([]Cell{Of("1")})
	tbl.Set(0, "b", Of("2"))
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
	assert.Equal(t, "2", tbl.Get(0, "b").Value)
}

func TestRename(t *testing.T) {
	tbl := New("uri", "x")
	tbl.Append([]Cell{Of("u1"), Of("1")})

	require.NoError(t, tbl.Rename("uri", "uriDeputado"))
	assert.Equal(t, []string{"uriDeputado", "x"}, tbl.Columns())
	assert.Equal(t, "u1", tbl.Get(0, "uriDeputado").Value)
	assert.False(t, tbl.Has("uri"))

	assert.Error(t, tbl.Rename("missing", "y"))
	assert.Error(t, tbl.Rename("x", "uriDeputado"))
	assert.NoError(t, tbl.Rename("x", "x"))
}

func TestDrop(t *testing.T) {
	tbl := New("a", "b", "c")
	tbl.Append([]Cell{Of("1"), Of("2"), Of("3")})

	tbl.Drop("b")
	tbl.Drop("missing")

	assert.Equal(t, []string{"a", "c"}, tbl.Columns())
	assert.Equal(t, "3", tbl.Get(0, "c").Value)
	idx, ok := tbl.Index("c")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestReorder(t *testing.T) {
	tbl := New("x", "b", "y", "a")
	tbl.Append([]Cell{Of("x1"), Of("b1"), Of("y1"), Of("a1")})

	tbl.Reorder([]string{"a", "missing", "b"})

	assert.Equal(t, []string{"a", "b", "x", "y"}, tbl.Columns())
	assert.Equal(t, []Cell{Of("a1"), Of("b1"), Of("x1"), Of("y1")}, tbl.Row(0))
	assert.Equal(t, "y1", tbl.Get(0, "y").Value)
}

func TestFilter(t *testing.T) {
	tbl := New("n")
	for _, v := range []string{"1", "2", "3", "4"} {
		tbl.Append([]Cell{Of(v)})
	}

	removed := tbl.Filter(func(row []Cell) bool { return row[0].Value != "2" && row[0].Value != "4" })

	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"1", "3"}, values(tbl, "n"))
}

func TestDedup_FirstOccurrenceWins(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append([]Cell{Of("1"), Of("x")})
	tbl.Append([]Cell{Of("2"), Null()})
	tbl.Append([]Cell{Of("1"), Of("x")})
	tbl.Append([]Cell{Of("2"), Of("")})
	tbl.Append([]Cell{Of("2"), Null()})

	removed := tbl.Dedup()

	assert.Equal(t, 2, removed)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"1", "2", "2"}, values(tbl, "a"))
	assert.Equal(t, []string{"x", "<nil>", ""}, values(tbl, "b"))
}

func TestDedup_SeparatorBytesInValues(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append([]Cell{Of("a\x1f\x01b"), Null()})
	tbl.Append([]Cell{Of("a"), Of("b\x1f\x00")})
	tbl.Append([]Cell{Of("1:x"), Of("")})
	tbl.Append([]Cell{Of(""), Of("1:x")})
	tbl.Append([]Cell{Of("-"), Null()})
	tbl.Append([]Cell{Null(), Of("-")})

	assert.Equal(t, 0, tbl.Dedup())
	assert.Equal(t, 6, tbl.Len())
}

func TestClone_IsDeep(t *testing.T) {
	tbl := New("a")
	tbl.Append([]Cell{Of("1")})

	c := tbl.Clone()
	c.Set(0, "a", Of("changed"))
	c.AddColumn("b")

	assert.Equal(t, "1", tbl.Get(0, "a").Value)
	assert.False(t, tbl.Has("b"))
}

func TestConcat_UnionOfColumns(t *testing.T) {
	t1 := New("a", "b")
	t1.Append([]Cell{Of("a1"), Of("b1")})
	t2 := New("c", "a")
	t2.Append([]Cell{Of("c2"), Of("a2")})
	t2.Append([]Cell{Of("c3"), Of("a3")})

	out := Concat(t1, t2)

	assert.Equal(t, []string{"a", "b", "c"}, out.Columns())
	assert.Equal(t, []string{"a1", "a2", "a3"}, values(out, "a"))
	assert.Equal(t, []string{"b1", "<nil>", "<nil>"}, values(out, "b"))
	assert.Equal(t, []string{"<nil>", "c2", "c3"}, values(out, "c"))
}

func TestConcat_Empty(t *testing.T) {
	out := Concat()
	assert.Empty(t, out.Columns())
	assert.Equal(t, 0, out.Len())
}

func TestWriteDelimited(t *testing.T) {
	tbl := FromRecords([]string{"a", "b"}, [][]string{{"1", ""}, {"x;y", "2"}})

	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, tbl, ';'))
	assert.Equal(t, "a;b\n1;\n\"x;y\";2\n", buf.String())
}

func TestFromRecords_EmptyIsNull(t *testing.T) {
	tbl := FromRecords([]string{"a", "b"}, [][]string{{"", "v"}})
	assert.False(t, tbl.Get(0, "a").Valid)
	assert.Equal(t, "v", tbl.Get(0, "b").Value)
}
