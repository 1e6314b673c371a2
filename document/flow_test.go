package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/overset/geometry"
)

func TestMonospaceWrapsWords(t *testing.T) {
	lines, err := Monospace{Advance: 0.5}.LayoutLines("aaa bbb ccc\nabcdefghij", 8, FontResource{}, 4, 5)
	require.NoError(t, err)

	var got []string
	for _, ln := range lines {
		got = append(got, ln.Content)
	}
	assert.Equal(t, []string{"aaa", "bbb", "ccc", "abcd", "efgh", "ij"}, got)
	assert.True(t, lines[2].Newline)
	assert.False(t, lines[0].Newline)
	assert.False(t, lines[5].Newline)
	assert.Equal(t, 0.0, lines[0].GapBefore)
	assert.Equal(t, 1.0, lines[1].GapBefore)
	assert.Equal(t, 6.0, lines[0].Width)

	_, err = Monospace{}.LayoutLines("x", 0, FontResource{}, 4, 5)
	assert.Error(t, err)
}

func TestJoinLinesRestoresBreaks(t *testing.T) {
	lines, err := Monospace{Advance: 0.5}.LayoutLines("one two three\nfour", 16, FontResource{}, 4, 5)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "one two three\nfour", joinLines(lines))
}

func TestTextOverflowsAtCapacity(t *testing.T) {
	d := newA4(t, 1)
	addStory(t, d, 1, "Fits", 51)
	over, err := d.TextOverflows("Fits")
	require.NoError(t, err)
	assert.False(t, over)

	require.NoError(t, d.SetText("Fits", numbered(52)))
	over, err = d.TextOverflows("Fits")
	require.NoError(t, err)
	assert.True(t, over)
}

func TestTrailingWhitespaceIsNotOverflow(t *testing.T) {
	d := newA4(t, 1)
	addStory(t, d, 1, "A", 0)
	require.NoError(t, d.SetText("A", numbered(51)+"\n   \n"))

	over, err := d.TextOverflows("A")
	require.NoError(t, err)
	assert.False(t, over)
}

func TestColumnsMultiplyCapacity(t *testing.T) {
	d := newA4(t, 1)
	addStory(t, d, 1, "A", 102)
	require.NoError(t, d.SetColumns(2, "A"))
	require.NoError(t, d.SetColumnGap(10, "A"))

	over, err := d.TextOverflows("A")
	require.NoError(t, err)
	assert.False(t, over)

	require.NoError(t, d.SetText("A", numbered(103)))
	over, err = d.TextOverflows("A")
	require.NoError(t, err)
	assert.True(t, over)
}

func TestOverflowFollowsChain(t *testing.T) {
	d := newA4(t, 2)
	addStory(t, d, 1, "A", 60)
	addStory(t, d, 2, "B", 0)

	over, err := d.TextOverflows("A")
	require.NoError(t, err)
	assert.True(t, over)

	require.NoError(t, d.LinkTextFrames("A", "B"))
	for _, name := range []string{"A", "B"} {
		over, err = d.TextOverflows(name)
		require.NoError(t, err)
		assert.False(t, over, name)
	}

	res, err := d.Layout()
	require.NoError(t, err)
	require.Len(t, res.Pages, 2)
	require.Len(t, res.Pages[0].Frames, 1)
	require.Len(t, res.Pages[1].Frames, 1)
	assert.Len(t, res.Pages[0].Frames[0].Columns[0].Lines, 51)
	assert.Len(t, res.Pages[1].Frames[0].Columns[0].Lines, 9)
	assert.False(t, res.Pages[1].Frames[0].Overflows)
}

func TestLayoutColumnsAndUnits(t *testing.T) {
	d := New(geometry.Size{Width: 100, Height: 100}, geometry.Margins{Left: 1, Right: 1, Top: 1, Bottom: 1},
		geometry.UnitCentimeters, Monospace{Advance: 0.5})
	require.NoError(t, d.NewPage(1, ""))
	_, err := d.CreateText(1, geometry.Rect{X: 1, Y: 2, Width: 9, Height: 5}, "A")
	require.NoError(t, err)
	require.NoError(t, d.SetColumns(2, "A"))
	require.NoError(t, d.SetColumnGap(1, "A"))
	require.NoError(t, d.SetText("A", "x"))

	res, err := d.Layout()
	require.NoError(t, err)
	box := res.Pages[0].Frames[0]
	assert.Equal(t, 10.0, box.X)
	assert.Equal(t, 20.0, box.Y)
	require.Len(t, box.Columns, 2)
	assert.InDelta(t, 40.0, box.Columns[0].Width, 1e-9)
	assert.InDelta(t, 60.0, box.Columns[1].X, 1e-9)
	assert.InDelta(t, 12*geometry.PtToMm, box.FontSize, 1e-9)
	assert.InDelta(t, box.FontSize*1.4, box.LineHeight, 1e-9)
}

func TestMissingTypesetter(t *testing.T) {
	d := newA4(t, 1)
	addStory(t, d, 1, "A", 1)
	d.SetTypesetter(nil)
	_, err := d.TextOverflows("A")
	assert.Error(t, err)
}

func TestUndeclaredFontIsAnError(t *testing.T) {
	d := newA4(t, 1)
	d.Fonts["Body"] = FontResource{Name: "Body", Src: "builtin:lmroman10-regular"}
	d.ParaStyles["Odd"] = Style{Name: "Odd", Props: map[string]string{"font": "Missing"}}
	addStory(t, d, 1, "A", 1)
	require.NoError(t, d.SetParagraphStyle("Odd", "A"))

	_, err := d.TextOverflows("A")
	assert.Error(t, err)
}
