package sh

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/nanoboard/pkg/scratch"
)

func listenScratch(t *testing.T) (string, <-chan net.Conn) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	accepted := make(chan net.Conn, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}
	}()
	return ln.Addr().String(), accepted
}

func (s *Shell) currentPrompt() string {
	s.connLock.Lock()
	defer s.connLock.Unlock()
	return s.prompt
}

func newTestShell() *Shell {
	conf := scratch.NewConfig()
	conf.ReadTimeout = 20 * time.Millisecond
	return New(conf)
}

func TestShellPeerClose(t *testing.T) {
	addr, accepted := listenScratch(t)
	s := newTestShell()
	require.Equal(t, unconnectedPrompt, s.currentPrompt())

	require.NoError(t, s.Connect(addr))
	require.Equal(t, addr+" > ", s.currentPrompt())
	client, err := s.Client()
	require.NoError(t, err)
	require.NotNil(t, client)

	peer := <-accepted
	require.NoError(t, peer.Close())
	require.Eventually(t, func() bool { return s.Conn() == nil }, time.Second, 5*time.Millisecond)
	require.Equal(t, unconnectedPrompt, s.currentPrompt())
	_, err = s.Client()
	require.Error(t, err)
}

func TestShellReconnect(t *testing.T) {
	addr, accepted := listenScratch(t)
	s := newTestShell()

	require.NoError(t, s.Connect(addr))
	first := s.Conn()
	<-accepted
	require.NoError(t, s.Connect("tcp://"+addr))
	second := s.Conn()
	require.NotSame(t, first, second)
	<-accepted

	// the first connection stopping must not clear the second one.
	time.Sleep(50 * time.Millisecond)
	require.Same(t, second, s.Conn())
	require.Equal(t, "tcp://"+addr+" > ", s.currentPrompt())

	s.Disconnect()
	require.Nil(t, s.Conn())
	require.Equal(t, unconnectedPrompt, s.currentPrompt())
	s.Disconnect()
}
