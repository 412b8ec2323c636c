package attachments

import (
	"bytes"
	"image"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItems(names ...string) []Item {
	items := make([]Item, len(names))
	for i, n := range names {
		items[i] = NewItem(n, "", []byte(n))
	}
	return items
}

func listOf(t *testing.T, names ...string) List {
	t.Helper()
	l, err := List{}.Append(newItems(names...)...)
	require.NoError(t, err)
	return l
}

func TestReorder(t *testing.T) {
	t.Run("drag 0 to 2", func(t *testing.T) {
		l := listOf(t, "a", "b", "c", "d")
		next, changed, err := l.Reorder(0, 2)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, []string{"b", "c", "a", "d"}, next.Serialize())
		assert.Equal(t, []string{"a", "b", "c", "d"}, l.Serialize(), "receiver is untouched")
	})

	t.Run("move last to first", func(t *testing.T) {
		next, _, err := listOf(t, "a", "b", "c").Reorder(2, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, next.Serialize())
	})

	t.Run("same index is a no-op", func(t *testing.T) {
		l := listOf(t, "a", "b")
		next, changed, err := l.Reorder(1, 1)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, l.Serialize(), next.Serialize())
	})

	t.Run("out of range", func(t *testing.T) {
		_, _, err := listOf(t, "a").Reorder(0, 1)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, _, err = listOf(t, "a").Reorder(-1, 0)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}

func TestAppend_Capacity(t *testing.T) {
	l, err := List{}.Append(newItems("1", "2", "3", "4", "5", "6")...)
	require.NoError(t, err)
	require.Equal(t, 6, l.Len())

	l, err = l.Append(newItems("7", "8", "9", "10", "11", "12", "13")...)
	assert.ErrorIs(t, err, ErrTooManyAttachments)
	assert.Equal(t, MaxItems, l.Len())
	assert.Equal(t, "10", l.Serialize()[9])

	full := l
	l, err = l.Append(newItems("14")...)
	assert.ErrorIs(t, err, ErrTooManyAttachments)
	assert.Equal(t, full.Serialize(), l.Serialize())
}

func TestRemove(t *testing.T) {
	l := listOf(t, "a", "b", "c")
	next, err := l.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, next.Serialize())

	_, err = next.Remove(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestEditList(t *testing.T) {
	l := FromTask([]string{"/uploads/x.png", "/uploads/y.jpg"})
	l, err := l.Append(NewItem("new.png", "image/png", nil))
	require.NoError(t, err)
	l, _, err = l.Reorder(2, 0)
	require.NoError(t, err)
	l, err = l.Remove(2)
	require.NoError(t, err)

	assert.Equal(t, []string{"new.png", "/uploads/x.png"}, l.Serialize())
	assert.Equal(t, []string{"/uploads/x.png"}, l.KeepExisting())
	require.Len(t, l.NewFiles(), 1)
	assert.Equal(t, "new.png", l.NewFiles()[0].Name)
	first, ok := l.At(0)
	require.True(t, ok)
	assert.Equal(t, "image/png", first.Meta.MimeType)
}

func TestEmptyListSerializesToEmptySlice(t *testing.T) {
	assert.NotNil(t, List{}.Serialize())
	assert.NotNil(t, List{}.KeepExisting())
	assert.Empty(t, List{}.Serialize())
}

// Random append/remove/reorder sequences against a plain slice model.
func TestListOperations_MatchModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		var l List
		var model []string
		next := 0

		for step := 0; step < 40; step++ {
			switch rng.Intn(3) {
			case 0:
				batch := rng.Intn(4) + 1
				var names []string
				for i := 0; i < batch; i++ {
					names = append(names, string(rune('a'+next%26))+string(rune('0'+next/26%10)))
					next++
				}
				var err error
				l, err = l.Append(newItems(names...)...)
				room := MaxItems - len(model)
				if room < 0 {
					room = 0
				}
				if len(names) > room {
					assert.ErrorIs(t, err, ErrTooManyAttachments)
					names = names[:room]
				} else {
					assert.NoError(t, err)
				}
				model = append(model, names...)
			case 1:
				if len(model) == 0 {
					continue
				}
				i := rng.Intn(len(model))
				var err error
				l, err = l.Remove(i)
				require.NoError(t, err)
				model = append(model[:i:i], model[i+1:]...)
			case 2:
				if len(model) == 0 {
					continue
				}
				from, to := rng.Intn(len(model)), rng.Intn(len(model))
				var err error
				var changed bool
				l, changed, err = l.Reorder(from, to)
				require.NoError(t, err)
				assert.Equal(t, from != to, changed)
				moved := model[from]
				rest := append(model[:from:from], model[from+1:]...)
				model = append(rest[:to:to], append([]string{moved}, rest[to:]...)...)
			}

			require.LessOrEqual(t, l.Len(), MaxItems)
			require.Equal(t, append([]string{}, model...), l.Serialize())
		}
	}
}

func TestDragState(t *testing.T) {
	var d DragState
	_, _, ok := d.Drop(1)
	assert.False(t, ok, "drop without start")

	d.Start(0)
	from, to, ok := d.Drop(2)
	assert.True(t, ok)
	assert.Equal(t, 0, from)
	assert.Equal(t, 2, to)
	_, dragging := d.Dragging()
	assert.False(t, dragging, "drop clears the index")

	d.Start(3)
	_, _, ok = d.Drop(3)
	assert.False(t, ok)

	d.Start(1)
	d.End()
	_, _, ok = d.Drop(0)
	assert.False(t, ok, "end clears the index")
}

func TestInspect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	meta := Inspect("photo.bin", "", buf.Bytes())
	assert.Equal(t, "image/png", meta.MimeType)
	require.NotNil(t, meta.Width)
	assert.Equal(t, 3, *meta.Width)
	assert.Equal(t, 2, *meta.Height)

	meta = Inspect("clip.mp4", "video/mp4", []byte{0, 0, 0})
	assert.True(t, meta.IsVideo())
	assert.Nil(t, meta.Width)

	meta = Inspect("broken.png", "", []byte("not a png"))
	assert.Equal(t, "image/png", meta.MimeType)
	assert.Nil(t, meta.Width)
}
