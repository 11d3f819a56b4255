package handler

import (
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/config"
	"github.com/danmakucore/server/internal/core/event"
	"github.com/danmakucore/server/internal/net"
	"github.com/danmakucore/server/internal/net/packet"
	"github.com/danmakucore/server/internal/persist"
	"github.com/danmakucore/server/internal/phase"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/world"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	World  *world.State
	Bus    *event.Bus
	Types  *phase.Types
	Limits playerdata.Limits
	// Players is nil when the server runs without a database.
	Players *persist.PlayerRepo
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry[*net.Session], deps *Deps) {
	reg.Register(packet.C_OPCODE_HELLO,
		[]packet.SessionState{packet.StateHandshake},
		func(sess *net.Session, r *packet.Reader) {
			HandleHello(sess, r, deps)
		},
	)

	inWorld := []packet.SessionState{packet.StateInWorld}

	reg.Register(packet.C_OPCODE_LOOK, inWorld,
		func(sess *net.Session, r *packet.Reader) {
			HandleLook(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_DECLARE_SPELLCARD, inWorld,
		func(sess *net.Session, r *packet.Reader) {
			HandleDeclareSpellcard(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_QUIT,
		[]packet.SessionState{packet.StateHandshake, packet.StateInWorld},
		func(sess *net.Session, r *packet.Reader) {
			HandleQuit(sess, r, deps)
		},
	)
}
