//go:build linux

package transport

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListener_AcceptReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.sock")
	ln, err := Listen(path)
	require.NoError(t, err)
	defer ln.Close()

	_, err = ln.Accept()
	assert.ErrorIs(t, err, ErrWouldBlock)

	client, err := net.Dial("unix", path)
	require.NoError(t, err)

	var conn *Conn
	require.Eventually(t, func() bool {
		conn, err = ln.Accept()
		return err == nil
	}, testWait, testTick)
	defer conn.Close()

	_, err = conn.Read(make([]byte, 8))
	assert.ErrorIs(t, err, ErrWouldBlock)

	_, err = client.Write([]byte("ping\n"))
	require.NoError(t, err)

	buf := make([]byte, 16)
	var n int
	require.Eventually(t, func() bool {
		n, err = conn.Read(buf)
		return err == nil
	}, testWait, testTick)
	assert.Equal(t, "ping\n", string(buf[:n]))

	_, err = conn.Write([]byte("pong\n"))
	require.NoError(t, err)
	reply := make([]byte, 5)
	_, err = io.ReadFull(client, reply)
	require.NoError(t, err)
	assert.Equal(t, "pong\n", string(reply))

	require.NoError(t, client.Close())
	require.Eventually(t, func() bool {
		_, err = conn.Read(buf)
		return err == io.EOF
	}, testWait, testTick)
}

func TestListen_ReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.sock")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	second, err := Listen(path)
	require.NoError(t, err)
	assert.Equal(t, path, second.Path())
	require.NoError(t, second.Close())
	assert.NoFileExists(t, path)
}
