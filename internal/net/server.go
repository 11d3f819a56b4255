package net

import (
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ServerOptions configures the listener side.
type ServerOptions struct {
	Session  SessionOptions
	MaxPerIP int // 0 means unlimited
	Backlog  int // sessions waiting for the game loop to pick them up
}

// Server accepts TCP connections and starts a Session for each. The game
// loop learns about new and closed sessions through two channels.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	newConns chan *Session
	deadCh   chan uint64
	opts     ServerOptions
	log      *zap.Logger
	closeCh  chan struct{}
	once     sync.Once

	mu    sync.Mutex
	perIP map[string]int
	live  atomic.Int64
}

func NewServer(bindAddr string, opts ServerOptions, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	if opts.Backlog <= 0 {
		opts.Backlog = 64
	}
	return &Server{
		listener: ln,
		newConns: make(chan *Session, opts.Backlog),
		deadCh:   make(chan uint64, opts.Backlog),
		opts:     opts,
		log:      log,
		closeCh:  make(chan struct{}),
		perIP:    make(map[string]int),
	}, nil
}

// AcceptLoop runs in its own goroutine until Shutdown.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("連線接受失敗", zap.Error(err))
			continue
		}

		host := hostOf(conn.RemoteAddr())
		if !s.admit(host) {
			s.log.Warn("同一 IP 連線過多，拒絕連線", zap.String("ip", host), zap.Int("limit", s.opts.MaxPerIP))
			conn.Close()
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.opts.Session, s.log)
		sess.Start()
		s.live.Add(1)
		go s.watch(sess, host)

		s.log.Info("玩家連線", zap.Uint64("session", id), zap.String("ip", sess.IP))

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("連線佇列已滿，拒絕新連線")
			sess.Close()
		}
	}
}

func (s *Server) admit(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.MaxPerIP > 0 && s.perIP[host] >= s.opts.MaxPerIP {
		return false
	}
	s.perIP[host]++
	return true
}

func (s *Server) release(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.perIP[host] <= 1 {
		delete(s.perIP, host)
		return
	}
	s.perIP[host]--
}

// watch reports the session to the game loop once it closes.
func (s *Server) watch(sess *Session, host string) {
	<-sess.Done()
	s.release(host)
	s.live.Add(-1)
	s.NotifyDead(sess.ID)
}

func hostOf(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session { return s.newConns }

// NotifyDead reports a dead session id to the game loop. Drops the report
// when the loop is behind; the session's closed state catches it later.
func (s *Server) NotifyDead(sessionID uint64) {
	select {
	case s.deadCh <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of dead session ids.
func (s *Server) DeadSessions() <-chan uint64 { return s.deadCh }

// Live returns how many accepted connections are still open.
func (s *Server) Live() int { return int(s.live.Load()) }

// Shutdown stops accepting new connections. Safe to call more than once.
func (s *Server) Shutdown() {
	s.once.Do(func() {
		close(s.closeCh)
		s.listener.Close()
	})
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }
