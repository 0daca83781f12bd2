package scratch

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/nanoboard/pkg/comm/stream"
)

func TestTCPAddr(t *testing.T) {
	testCases := []struct {
		url    string
		expect string
	}{
		{"tcp://localhost", "localhost:42001"},
		{"tcp://10.0.0.1:5000", "10.0.0.1:5000"},
		{"tcp://[::1]", "[::1]:42001"},
	}
	for _, tc := range testCases {
		u, err := url.Parse(tc.url)
		require.NoError(t, err)
		require.Equal(t, tc.expect, tcpAddr(u), tc.url)
	}
}

func TestConfigDialTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	accepted := make(chan net.Conn, 2)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}
	}()

	addr := ln.Addr().String()
	for _, rawURL := range []string{addr, "tcp://" + addr} {
		conf := NewConfig()
		conf.URL = rawURL
		conf.ReadTimeout = 20 * time.Millisecond
		client, err := conf.Dial(context.Background())
		require.NoError(t, err, rawURL)
		names := make(chan string, 1)
		client.WithHandler(&HandlerFuncs{
			Broadcast: func(_ context.Context, name string) { names <- name },
		})
		runErr := make(chan error, 1)
		go func() { runErr <- client.Run(context.Background()) }()

		var peer net.Conn
		select {
		case peer = <-accepted:
		case <-time.After(time.Second):
			t.Fatalf("%s: connection not accepted", rawURL)
		}

		require.NoError(t, client.Broadcast("ping"))
		frame, err := stream.NewReader(peer).ReadFrame()
		require.NoError(t, err)
		require.Equal(t, `broadcast "ping"`, string(frame))

		_, err = peer.Write(stream.Encode([]byte(`broadcast "pong"`)))
		require.NoError(t, err)
		select {
		case name := <-names:
			require.Equal(t, "pong", name)
		case <-time.After(time.Second):
			t.Fatalf("%s: broadcast not received", rawURL)
		}

		require.NoError(t, client.Close())
		select {
		case err := <-runErr:
			require.True(t, errors.Is(err, ErrConnectionClosed))
		case <-time.After(time.Second):
			t.Fatalf("%s: Run didn't stop", rawURL)
		}
		peer.Close()
	}
}

func TestConfigConnectErrors(t *testing.T) {
	conf := NewConfig()
	conf.URL = "ftp://scratch"
	_, err := conf.Connect(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown Scratch URL scheme: "ftp"`)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	conf.URL = ln.Addr().String()
	require.NoError(t, ln.Close())
	_, err = conf.Connect(context.Background())
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	require.Equal(t, "dial", connErr.Op)
}
