package sheets

import (
	"context"
	"net"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/m3rciful/tracker/internal/netutil"
)

// resettingListener accepts connections, reads the request and aborts the
// connection with a TCP reset.
func resettingListener(t *testing.T) (string, *atomic.Int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	var accepted atomic.Int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted.Add(1)
			buf := make([]byte, 4096)
			_, _ = conn.Read(buf)
			if tcp, ok := conn.(*net.TCPConn); ok {
				_ = tcp.SetLinger(0)
			}
			_ = conn.Close()
		}
	}()
	return "http://" + ln.Addr().String() + "/", &accepted
}

func TestGoogleUpdateIsNotRetried(t *testing.T) {
	endpoint, accepted := resettingListener(t)
	g, err := newGoogle(context.Background(),
		option.WithHTTPClient(netutil.NewDirectClient()),
		option.WithEndpoint(endpoint),
	)
	require.NoError(t, err)

	err = g.Update(context.Background(), "sheet-abc", "Tracker!B3:E3", Row(Int(6), Int(4), Int(4), Int(5)))
	require.Error(t, err)
	assert.Equal(t, int32(1), accepted.Load())
}

func TestGoogleGetIsNotRetried(t *testing.T) {
	endpoint, accepted := resettingListener(t)
	g, err := newGoogle(context.Background(),
		option.WithHTTPClient(netutil.NewDirectClient()),
		option.WithEndpoint(endpoint),
	)
	require.NoError(t, err)

	_, err = g.Get(context.Background(), "sheet-abc", "Dropdown!A3:A9")
	require.Error(t, err)
	assert.Equal(t, int32(1), accepted.Load())
}
