// Package voice owns the per-guild voice connection and serializes
// audio playback through a single worker per session.
package voice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	ErrAlreadyConnected = errors.New("already connected to that voice channel")
	ErrNotConnected     = errors.New("not connected to a voice channel")
	ErrConnectTimeout   = errors.New("voice connect timed out")
)

// Conn is the slice of voice-transport behavior a session needs. Send
// blocks until the frame is accepted or ctx is canceled; a connection
// that stopped draining frames must never wedge its caller.
type Conn interface {
	ChannelID() string
	Speaking(bool) error
	Send(ctx context.Context, frame []byte) error
	Disconnect() error
}

// Dialer joins a guild voice channel.
type Dialer func(guildID, channelID string) (Conn, error)

// Speaker plays one utterance into a connection, blocking until done.
type Speaker interface {
	Speak(ctx context.Context, conn Conn, text string) error
}

// Session is the live voice presence for one guild. Utterances are
// queued and consumed in FIFO order by a single worker goroutine, so
// two Speak calls can never overlap on the wire. Connect, move and
// disconnect are serialized by the session mutex.
type Session struct {
	guildID string
	dial    Dialer
	speaker Speaker

	connectTimeout time.Duration
	settleDelay    time.Duration

	mu         sync.Mutex
	conn       Conn
	channelID  string
	playCtx    context.Context
	playCancel context.CancelFunc

	ctx    context.Context
	queue  chan string
	cancel context.CancelFunc
	done   chan struct{}
}

const queueSize = 64

// NewSession creates a session and starts its playback worker. The
// worker stops when ctx is canceled or Close is called.
func NewSession(ctx context.Context, guildID string, dial Dialer, speaker Speaker) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		guildID:        guildID,
		dial:           dial,
		speaker:        speaker,
		connectTimeout: 5 * time.Second,
		settleDelay:    500 * time.Millisecond,
		ctx:            ctx,
		queue:          make(chan string, queueSize),
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	go s.worker(ctx)
	return s
}

type dialResult struct {
	conn Conn
	err  error
}

// Connect joins the given channel. Joining the current channel returns
// ErrAlreadyConnected. Joining a different channel while connected
// disconnects first and waits a settle delay before redialing. The
// attempt is bounded by the connect timeout.
func (s *Session) Connect(ctx context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		if s.channelID == channelID {
			return ErrAlreadyConnected
		}
		if err := s.dropConnLocked(); err != nil {
			log.Printf("[Session] Disconnect before move failed: %v", err)
		}
		time.Sleep(s.settleDelay)
	}

	ch := make(chan dialResult, 1)
	go func() {
		conn, err := s.dial(s.guildID, channelID)
		ch <- dialResult{conn: conn, err: err}
	}()

	timer := time.NewTimer(s.connectTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		go discardDial(ch)
		return ctx.Err()
	case <-timer.C:
		go discardDial(ch)
		return ErrConnectTimeout
	case res := <-ch:
		if res.err != nil {
			return fmt.Errorf("join voice channel %s: %w", channelID, res.err)
		}
		s.conn = res.conn
		s.channelID = channelID
		s.playCtx, s.playCancel = context.WithCancel(s.ctx)
		log.Printf("[Session] Joined voice channel %s on guild %s", channelID, s.guildID)
		return nil
	}
}

// dropConnLocked cancels any in-flight playback on the current
// connection before tearing it down, so the worker can never stay
// blocked in a send nobody drains anymore. Caller holds s.mu.
func (s *Session) dropConnLocked() error {
	s.playCancel()
	err := s.conn.Disconnect()
	s.conn = nil
	s.channelID = ""
	s.playCtx = nil
	s.playCancel = nil
	return err
}

// discardDial tears down a connection that arrived after the caller
// gave up waiting for it.
func discardDial(ch chan dialResult) {
	if res := <-ch; res.conn != nil {
		_ = res.conn.Disconnect()
	}
}

// Disconnect leaves the current voice channel.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}
	err := s.dropConnLocked()
	log.Printf("[Session] Left voice channel on guild %s", s.guildID)
	return err
}

// Connected reports whether the session holds a live connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// ChannelID returns the connected channel, or "" when disconnected.
func (s *Session) ChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

// Speak queues an utterance for playback. When the queue is full the
// utterance is dropped with a log line rather than blocking the caller.
func (s *Session) Speak(text string) {
	select {
	case s.queue <- text:
	default:
		log.Printf("[Session] Utterance dropped (queue full): %s", text)
	}
}

// Close stops the playback worker and leaves the voice channel.
func (s *Session) Close() {
	s.cancel()
	<-s.done
	if err := s.Disconnect(); err != nil && !errors.Is(err, ErrNotConnected) {
		log.Printf("[Session] Disconnect on close failed: %v", err)
	}
}

func (s *Session) worker(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-s.queue:
			s.play(text)
		}
	}
}

// play runs one utterance under the connection's playback context, so
// a move or disconnect cuts it off instead of waiting it out.
func (s *Session) play(text string) {
	s.mu.Lock()
	conn, ctx := s.conn, s.playCtx
	s.mu.Unlock()

	if conn == nil {
		return
	}
	if err := s.speaker.Speak(ctx, conn, text); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("[Session] Playback failed on guild %s: %v", s.guildID, err)
	}
}
