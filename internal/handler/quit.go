package handler

import (
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/net"
	"github.com/danmakucore/server/internal/net/packet"
)

// HandleQuit processes C_QUIT. Only the session is closed here; the input
// system removes the player when it sees the dead session.
func HandleQuit(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info("玩家登出", zap.Uint64("session", sess.ID), zap.String("name", sess.PlayerName))
	sess.Close()
}
