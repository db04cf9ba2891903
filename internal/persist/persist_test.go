package persist

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadBeforeAnySave(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	b, found, err := s.Load()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, b)
}

func TestStore_SaveThenLoad(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save([]byte(`{"version":1}`)))

	b, found, err := s.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte(`{"version":1}`), b)

	// no temp file left behind
	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_SaveOverwrites(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save([]byte("first")))
	require.NoError(t, s.Save([]byte("second")))

	b, _, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), b)
}

func TestAutosaver_FlushesLatestOnClose(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a := NewAutosaver(s, nil)
	a.Start()
	a.Queue([]byte("v1"))
	a.Queue([]byte("v2"))
	a.Queue([]byte("v3"))
	a.Close()

	b, found, err := s.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v3"), b)
}

func TestAutosaver_QueueNeverBlocks(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	// writer not started: every Queue call must still return
	a := NewAutosaver(s, nil)
	for i := 0; i < 100; i++ {
		a.Queue([]byte{byte(i)})
	}
}
