package voice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	channelID    string
	mu           sync.Mutex
	disconnected bool
}

func (c *fakeConn) ChannelID() string                  { return c.channelID }
func (c *fakeConn) Speaking(bool) error                { return nil }
func (c *fakeConn) Send(context.Context, []byte) error { return nil }
func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

func fakeDial(guildID, channelID string) (Conn, error) {
	return &fakeConn{channelID: channelID}, nil
}

// recordingSpeaker records utterances in playback order.
type recordingSpeaker struct {
	mu      sync.Mutex
	delay   time.Duration
	spoken  []string
	active  int
	overlap bool
}

func (r *recordingSpeaker) Speak(ctx context.Context, conn Conn, text string) error {
	r.mu.Lock()
	r.active++
	if r.active > 1 {
		r.overlap = true
	}
	r.mu.Unlock()

	time.Sleep(r.delay)

	r.mu.Lock()
	r.active--
	r.spoken = append(r.spoken, text)
	r.mu.Unlock()
	return nil
}

func (r *recordingSpeaker) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.spoken))
	copy(out, r.spoken)
	return out
}

func (r *recordingSpeaker) overlapped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlap
}

func newTestSession(t *testing.T, dial Dialer, speaker Speaker) *Session {
	t.Helper()
	s := NewSession(context.Background(), "g1", dial, speaker)
	s.connectTimeout = 200 * time.Millisecond
	s.settleDelay = 10 * time.Millisecond
	t.Cleanup(s.Close)
	return s
}

func TestSession_ConnectAndDisconnect(t *testing.T) {
	s := newTestSession(t, fakeDial, &recordingSpeaker{})

	require.NoError(t, s.Connect(context.Background(), "vc1"))
	assert.True(t, s.Connected())
	assert.Equal(t, "vc1", s.ChannelID())

	require.NoError(t, s.Disconnect())
	assert.False(t, s.Connected())
	assert.Equal(t, "", s.ChannelID())
}

func TestSession_ConnectSameChannelIsNoOp(t *testing.T) {
	s := newTestSession(t, fakeDial, &recordingSpeaker{})

	require.NoError(t, s.Connect(context.Background(), "vc1"))
	err := s.Connect(context.Background(), "vc1")
	assert.ErrorIs(t, err, ErrAlreadyConnected)
	assert.Equal(t, "vc1", s.ChannelID())
}

func TestSession_MoveDisconnectsFirst(t *testing.T) {
	var conns []*fakeConn
	dial := func(guildID, channelID string) (Conn, error) {
		c := &fakeConn{channelID: channelID}
		conns = append(conns, c)
		return c, nil
	}
	s := newTestSession(t, dial, &recordingSpeaker{})

	require.NoError(t, s.Connect(context.Background(), "vc1"))
	require.NoError(t, s.Connect(context.Background(), "vc2"))

	require.Len(t, conns, 2)
	assert.True(t, conns[0].disconnected)
	assert.False(t, conns[1].disconnected)
	assert.Equal(t, "vc2", s.ChannelID())
}

func TestSession_ConnectTimeout(t *testing.T) {
	release := make(chan struct{})
	dial := func(guildID, channelID string) (Conn, error) {
		<-release
		return &fakeConn{channelID: channelID}, nil
	}
	s := newTestSession(t, dial, &recordingSpeaker{})

	err := s.Connect(context.Background(), "vc1")
	assert.ErrorIs(t, err, ErrConnectTimeout)
	assert.False(t, s.Connected())
	close(release)
}

func TestSession_DisconnectWhenNotConnected(t *testing.T) {
	s := newTestSession(t, fakeDial, &recordingSpeaker{})
	assert.ErrorIs(t, s.Disconnect(), ErrNotConnected)
}

func TestSession_SpeakQueueIsSequentialFIFO(t *testing.T) {
	speaker := &recordingSpeaker{delay: 20 * time.Millisecond}
	s := newTestSession(t, fakeDial, speaker)
	require.NoError(t, s.Connect(context.Background(), "vc1"))

	s.Speak("first")
	s.Speak("second")
	s.Speak("third")

	require.Eventually(t, func() bool {
		return len(speaker.snapshot()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"first", "second", "third"}, speaker.snapshot())
	assert.False(t, speaker.overlapped(), "playbacks must never overlap")
}

func TestSession_SpeakWhileDisconnectedIsDropped(t *testing.T) {
	speaker := &recordingSpeaker{}
	s := newTestSession(t, fakeDial, speaker)

	s.Speak("ignored")
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, speaker.snapshot())
}

// gatewayConn accepts frames while live and blocks them after
// Disconnect, matching how the gateway's opus channel behaves once its
// reader goroutine is gone.
type gatewayConn struct {
	channelID string
	mu        sync.Mutex
	dead      bool
}

func (c *gatewayConn) ChannelID() string   { return c.channelID }
func (c *gatewayConn) Speaking(bool) error { return nil }

func (c *gatewayConn) Send(ctx context.Context, frame []byte) error {
	c.mu.Lock()
	dead := c.dead
	c.mu.Unlock()
	if !dead {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *gatewayConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dead = true
	return nil
}

// framePumpSpeaker streams frames until a send fails, like a long
// utterance caught mid-playback.
type framePumpSpeaker struct {
	started chan struct{}
	once    sync.Once
}

func (p *framePumpSpeaker) Speak(ctx context.Context, conn Conn, text string) error {
	p.once.Do(func() { close(p.started) })
	for {
		if err := conn.Send(ctx, []byte{0}); err != nil {
			return err
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSession_MoveCancelsInFlightPlayback(t *testing.T) {
	speaker := &framePumpSpeaker{started: make(chan struct{})}
	dial := func(guildID, channelID string) (Conn, error) {
		return &gatewayConn{channelID: channelID}, nil
	}
	s := newTestSession(t, dial, speaker)

	require.NoError(t, s.Connect(context.Background(), "vc1"))
	s.Speak("long utterance")
	select {
	case <-speaker.started:
	case <-time.After(time.Second):
		t.Fatal("playback never started")
	}

	// The move disconnects the old channel while the worker is still
	// streaming into it; the worker must come back, not block forever.
	require.NoError(t, s.Connect(context.Background(), "vc2"))

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close hung after a mid-playback move")
	}
}

func TestSession_CloseStopsWorker(t *testing.T) {
	speaker := &recordingSpeaker{}
	s := NewSession(context.Background(), "g1", fakeDial, speaker)
	require.NoError(t, s.Connect(context.Background(), "vc1"))

	s.Close()
	assert.False(t, s.Connected())
	assert.NotPanics(t, func() { s.Speak("after close") })
}
