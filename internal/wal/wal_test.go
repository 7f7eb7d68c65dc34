package wal

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stonetable/stonetable-db/internal/stonetable"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("Invalid config", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{}

		got, err := New(cfg)
		require.Error(t, err)
		require.Nil(t, got)
	})

	t.Run("Valid config", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{
			Path: t.TempDir(),
		}
		got, err := New(cfg)
		require.NoError(t, err)
		require.NotNil(t, got)
	})
}

func TestManager_Apply(t *testing.T) {
	t.Parallel()
	t.Run("Valid entry", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{
			Path: t.TempDir(),
		}

		m, err := New(cfg)
		require.NoError(t, err)
		now := time.Now()

		entry := &Entry{
			Table: "test",
			Rows: []stonetable.Row{
				{
					Key: "42",
					Columns: map[string]stonetable.Qualifier{
						"cf": {"0": []byte("value")},
					},
				},
			},
			Timestamp: now,
		}

		applyErr := m.Apply(entry)
		require.NoError(t, applyErr)

		// Check if the entry was written to the WAL file
		file, err := os.Open(m.walFile.Name())
		require.NoError(t, err)
		defer file.Close()

		stat, err := file.Stat()
		require.NoError(t, err)
		require.Greater(t, stat.Size(), int64(0), "WAL file should not be empty")

		fileContent := make([]byte, stat.Size())
		_, err = file.Read(fileContent)
		require.NoError(t, err)

		// try to unmarshal the entry
		var entryRead Entry
		err = json.Unmarshal(fileContent, &entryRead)
		require.NoError(t, err)
		require.Equal(t, entry.Table, entryRead.Table)
		require.Len(t, entryRead.Rows, 1)
		require.Equal(t, "42", entryRead.Rows[0].Key)
		require.Equal(t, entry.Timestamp.Unix(), entryRead.Timestamp.Unix())
	})
}

func TestManager_Load(t *testing.T) {
	t.Parallel()

	t.Run("replays entries in order", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		m, err := New(&Config{Path: t.TempDir()})
		req.NoError(err)

		first := &Entry{Table: "test", Rows: []stonetable.Row{{Key: "1"}}, Timestamp: time.Now()}
		second := &Entry{Table: "test", Drop: true, Timestamp: time.Now()}
		req.NoError(m.Apply(first))
		req.NoError(m.Apply(second))

		var seen []*Entry
		req.NoError(m.Load(func(e *Entry) {
			seen = append(seen, e)
		}))

		req.Len(seen, 2)
		req.Equal("1", seen[0].Rows[0].Key)
		req.True(seen[1].Drop)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		m, err := New(&Config{Path: t.TempDir()})
		req.NoError(err)
		req.NoError(m.Close())
		req.NoError(os.Remove(m.path))

		req.NoError(m.Load(func(e *Entry) {
			t.Fatal("no entries expected")
		}))
	})

	t.Run("truncate discards entries", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		m, err := New(&Config{Path: t.TempDir()})
		req.NoError(err)

		req.NoError(m.Apply(&Entry{Table: "test", Timestamp: time.Now()}))
		req.NoError(m.Truncate())

		count := 0
		req.NoError(m.Load(func(e *Entry) { count++ }))
		req.Zero(count)
	})
}
