package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/encoders/filter"
	"quill.dev/pkg/encoders/kind"
	"quill.dev/pkg/utils/context"
)

func open(t *testing.T, dir string) *D {
	t.Helper()
	ctx, cancel := context.Cancel(context.Bg())
	d, err := New(ctx, cancel, dir, "off")
	require.NoError(t, err)
	return d
}

func TestEventLogAppendScan(t *testing.T) {
	d := open(t, t.TempDir())
	defer d.Close()
	l, err := NewEventLog(d)
	require.NoError(t, err)
	require.EqualValues(t, 0, l.Len())

	evs := []*event.E{
		{ID: "aa", CreatedAt: 10, Kind: kind.Text, Content: "one"},
		{ID: "bb", CreatedAt: 20, Kind: kind.Text, Content: "two"},
		{ID: "cc", CreatedAt: 30, Kind: kind.Text, Content: "three"},
	}
	for i, ev := range evs {
		idx, err := l.Append(ev)
		require.NoError(t, err)
		require.EqualValues(t, i, idx)
	}
	got, err := l.ScanAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, ev := range got {
		require.Equal(t, evs[i].ID, ev.ID)
		require.Equal(t, evs[i].Content, ev.Content)
	}
}

func TestEventLogSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	d := open(t, dir)
	l, err := NewEventLog(d)
	require.NoError(t, err)
	_, err = l.Append(&event.E{ID: "aa", CreatedAt: 10})
	require.NoError(t, err)
	_, err = l.Append(&event.E{ID: "bb", CreatedAt: 20})
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d = open(t, dir)
	defer d.Close()
	l, err = NewEventLog(d)
	require.NoError(t, err)
	require.EqualValues(t, 2, l.Len())
	idx, err := l.Append(&event.E{ID: "cc", CreatedAt: 30})
	require.NoError(t, err)
	require.EqualValues(t, 2, idx)
	got, err := l.ScanAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "cc", got[2].ID)
}

func TestLoadKeysIsStable(t *testing.T) {
	dir := t.TempDir()
	d := open(t, dir)
	keys, err := d.LoadKeys()
	require.NoError(t, err)
	require.Len(t, keys.Pub(), 32)
	require.Len(t, keys.Sec(), 32)

	again, err := d.LoadKeys()
	require.NoError(t, err)
	require.Equal(t, keys.Pub(), again.Pub())
	require.NoError(t, d.Close())

	d = open(t, dir)
	defer d.Close()
	persisted, err := d.LoadKeys()
	require.NoError(t, err)
	require.Equal(t, keys.Pub(), persisted.Pub())
	require.Equal(t, keys.Sec(), persisted.Sec())
}

func TestSubscriptionStore(t *testing.T) {
	d := open(t, t.TempDir())
	defer d.Close()

	ff := filter.S{{Authors: []string{"614a"}, Kinds: []kind.T{kind.Text}}}
	require.NoError(t, d.PutSubscription("s1", ff))
	require.NoError(t, d.PutSubscription("s2", filter.S{{IDs: []string{"00"}}}))

	subs, err := d.ListSubscriptions()
	require.NoError(t, err)
	require.Len(t, subs, 2)
	byID := map[string]Subscription{}
	for _, s := range subs {
		byID[s.ID] = s
	}
	require.Contains(t, byID, "s1")
	require.Len(t, byID["s1"].Filters, 1)
	require.Equal(t, []string{"614a"}, byID["s1"].Filters[0].Authors)

	// replace under the same id
	require.NoError(t, d.PutSubscription("s1", filter.S{{IDs: []string{"ff"}}}))
	subs, err = d.ListSubscriptions()
	require.NoError(t, err)
	require.Len(t, subs, 2)

	require.NoError(t, d.DeleteSubscription("s1"))
	subs, err = d.ListSubscriptions()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, "s2", subs[0].ID)
}

// Cancelling the context must not race Close: the store stays usable after
// the cancel and shuts down only when its owner calls Close.
func TestCancelDoesNotCloseStore(t *testing.T) {
	ctx, cancel := context.Cancel(context.Bg())
	d, err := New(ctx, cancel, t.TempDir(), "off")
	require.NoError(t, err)

	cancel()
	require.NoError(t, d.Put([]byte("k"), []byte("v")))
	got, err := d.get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
	require.NoError(t, d.Close())
}
