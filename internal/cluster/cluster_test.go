package cluster

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		got, err := New(&Config{})
		require.Error(t, err)
		require.Nil(t, got)
	})

	t.Run("node count clamped to minimum", func(t *testing.T) {
		t.Parallel()
		got, err := New(&Config{Path: t.TempDir(), Nodes: 1})
		require.NoError(t, err)
		require.Equal(t, 2, got.nodeCount)
	})
}

func TestCluster_StartStop(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	workDir := filepath.Join(t.TempDir(), "mini-stonetable")

	// plant stale state that Start must clear
	req.NoError(os.MkdirAll(filepath.Join(workDir, "node-0"), 0750))
	stale := filepath.Join(workDir, "node-0", "stale.file")
	req.NoError(os.WriteFile(stale, []byte("old run"), 0640))

	c, err := New(&Config{Path: workDir, Nodes: 2})
	req.NoError(err)
	req.NoError(c.Start())
	defer func() { req.NoError(c.Stop()) }()

	_, statErr := os.Stat(stale)
	req.True(os.IsNotExist(statErr), "stale state should be cleared on start")

	req.NotEmpty(c.CoordinatorAddr())
	req.Equal(2, c.coordinator.NodeCount())
}

// freePort reserves an ephemeral port and releases it so the cluster can
// bind it.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestCluster_CoordinatorPort(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	port := freePort(t)
	c, err := New(&Config{
		Path:            filepath.Join(t.TempDir(), "work"),
		Nodes:           2,
		CoordinatorPort: port,
	})
	req.NoError(err)
	req.NoError(c.Start())
	defer func() { req.NoError(c.Stop()) }()

	req.Equal("127.0.0.1:"+strconv.Itoa(port), c.CoordinatorAddr())
}

func TestCluster_StopSafety(t *testing.T) {
	t.Parallel()

	t.Run("stop before start", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		c, err := New(&Config{Path: t.TempDir()})
		req.NoError(err)
		req.NoError(c.Stop())
	})

	t.Run("stop twice", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		c, err := New(&Config{Path: filepath.Join(t.TempDir(), "work")})
		req.NoError(err)
		req.NoError(c.Start())
		req.NoError(c.Stop())
		req.NoError(c.Stop())
	})
}
