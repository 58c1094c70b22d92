package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryInsertRemove(t *testing.T) {
	r := NewRegistry()
	require.Equal(t, 0, r.Len())

	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	r.Insert("alice", a)
	require.True(t, r.Contains("alice"))
	require.Equal(t, 1, r.Len())

	r.Remove("alice")
	require.False(t, r.Contains("alice"))

	// Removing an absent name is a no-op.
	r.Remove("alice")
	require.Equal(t, 0, r.Len())
}

func TestRegistryOverwritesDuplicateName(t *testing.T) {
	r := NewRegistry()
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	r.Insert("alice", a)
	r.Insert("alice", b)
	require.Equal(t, 1, r.Len())
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"carol", "alice", "bob"} {
		r.Insert(name, nil)
	}
	require.Equal(t, []string{"alice", "bob", "carol"}, r.Names())
}
