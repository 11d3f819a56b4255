package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/event"
	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/net"
	"github.com/danmakucore/server/internal/net/packet"
	"github.com/danmakucore/server/internal/world"
)

// PlayerSaver stores a player leaving the world.
type PlayerSaver interface {
	SavePlayer(p *world.Player)
}

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	netServer  *net.Server
	registry   *packet.Registry[*net.Session]
	store      *net.SessionStore
	maxPerTick int
	world      *world.State
	saver      PlayerSaver
	log        *zap.Logger
}

// NewInputSystem wires the input phase. netServer may be nil when sessions
// are added to the store directly; saver may be nil without a database.
func NewInputSystem(
	netServer *net.Server,
	registry *packet.Registry[*net.Session],
	store *net.SessionStore,
	maxPerTick int,
	ws *world.State,
	saver PlayerSaver,
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		netServer:  netServer,
		registry:   registry,
		store:      store,
		maxPerTick: maxPerTick,
		world:      ws,
		saver:      saver,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	if s.netServer != nil {
		// Accept new sessions
		for {
			select {
			case sess := <-s.netServer.NewSessions():
				s.store.Add(sess)
			default:
				goto doneNew
			}
		}
	doneNew:

		for {
			select {
			case id := <-s.netServer.DeadSessions():
				s.store.Remove(id)
			default:
				goto doneDead
			}
		}
	doneDead:
	}

	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			// A QUIT sent right before the close still has to be handled.
			for i := 0; i < s.maxPerTick; i++ {
				select {
				case data := <-sess.InQueue:
					if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
						s.log.Debug("封包分派錯誤 (斷線中)",
							zap.Uint64("session", sess.ID),
							zap.Error(err),
						)
					}
				default:
					goto doneClosing
				}
			}
		doneClosing:
			sess.FlushOutput()
			s.handleDisconnect(sess)
			if s.netServer != nil {
				s.netServer.NotifyDead(id)
			}
			s.store.Remove(id)
			continue
		}

		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
					s.log.Debug("封包分派錯誤",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				goto nextSession
			}
		}
	nextSession:
	}

	// 提前 flush：讓 Phase 0 產生的封包（HELLO、同步）立即進入 OutQueue，
	// Phase 4 的 OutputSystem 會再 flush 之後產生的封包。
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// handleDisconnect takes the session's player out of the world and saves it.
func (s *InputSystem) handleDisconnect(sess *net.Session) {
	p := s.world.RemovePlayer(sess.ID)
	if p == nil {
		return
	}
	if s.saver != nil {
		s.saver.SavePlayer(p)
	}
	world.Emit(s.world, event.PlayerDisconnected{EntityID: p.ID(), SessionID: sess.ID})
	s.log.Info("玩家離線", zap.String("name", p.Name), zap.Uint64("session", sess.ID))
}
