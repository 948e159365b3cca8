package net

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erasmund/depthkeep/internal/net/packet"
	"go.uber.org/zap"
)

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn net.Conn

	state atomic.Int32 // packet.SessionState stored as int32
	mu    sync.Mutex   // protects conn writes during init

	InQueue  chan []byte // game loop reads packets from here
	OutQueue chan []byte // writer goroutine reads from here

	IP          string
	AccountName string
	CharName    string

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize int, log *zap.Logger) *Session {
	s := &Session{
		ID:       id,
		conn:     conn,
		InQueue:  make(chan []byte, inSize),
		OutQueue: make(chan []byte, outSize),
		IP:       conn.RemoteAddr().String(),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateHandshake))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start sends the plaintext init packet (opcode + a server-chosen session
// seed the client echoes back in the login packet) and launches the
// reader and writer goroutines.
func (s *Session) Start() {
	seed := rand.Int31n(0x7FFFFFFE) + 1 // positive non-zero int32

	// [2B LE length=7][1B opcode=initpacket][4B LE seed]
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf[0:2], 7)
	buf[2] = packet.S_OPCODE_INITPACKET
	binary.LittleEndian.PutUint32(buf[3:7], uint32(seed))

	s.mu.Lock()
	_, err := s.conn.Write(buf)
	s.mu.Unlock()
	if err != nil {
		s.log.Error("init packet send failed", zap.Error(err))
		s.Close()
		return
	}

	go s.readLoop()
	go s.writeLoop()
}

// Send queues an already-built (padded) packet for sending.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- data:
	default:
		s.log.Warn("output queue full, disconnecting slow client")
		s.Close()
	}
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop runs in its own goroutine. It reads frames from the TCP connection
// and pushes them onto InQueue for the game loop to consume.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		// Block until InQueue has space or session closes. Dropping a queued
		// command would desync the player's authoritative world position, so
		// we apply backpressure per-session rather than drop silently.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop runs in its own goroutine. It reads packets from OutQueue and
// writes them as framed data to the TCP connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if len(data) > 0 {
				s.log.Debug("tx",
					zap.String("op", fmt.Sprintf("0x%02X(%d)", data[0], data[0])),
					zap.Int("len", len(data)),
				)
			}

			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := WriteFrame(s.conn, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
