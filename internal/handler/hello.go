package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/event"
	"github.com/danmakucore/server/internal/net"
	"github.com/danmakucore/server/internal/net/packet"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/vector"
	"github.com/danmakucore/server/internal/world"
)

const maxNameLen = 32

// HandleHello processes C_HELLO: protocol version, player uuid and name.
// Saved data is loaded, the player is placed in the world and its counters
// are synced to the client.
func HandleHello(sess *net.Session, r *packet.Reader, deps *Deps) {
	version := r.ReadH()
	id := r.ReadUUID()
	name := r.ReadS()

	if version != packet.ProtocolVersion {
		deps.Log.Warn("協定版本不符",
			zap.Uint64("session", sess.ID),
			zap.Uint16("client", version),
			zap.Int("server", packet.ProtocolVersion),
		)
		reject(sess, fmt.Sprintf("protocol %d required", packet.ProtocolVersion))
		return
	}
	if id == uuid.Nil || name == "" || len(name) > maxNameLen {
		deps.Log.Warn("無效的登入資料", zap.Uint64("session", sess.ID), zap.String("name", name))
		reject(sess, "invalid identity")
		return
	}

	ws := deps.World
	old := ws.GetByUUID(id)
	if old != nil {
		deps.Log.Info("重複登入，踢除舊連線", zap.String("uuid", id.String()))
		if old.Session != nil {
			old.Session.Send(BuildDisconnect("logged in elsewhere"))
			old.Session.FlushOutput()
			old.Session.Close()
		}
		ws.RemovePlayer(old.SessionID)
	}

	gp := deps.Config.Gameplay
	p := &world.Player{
		UUID:      id,
		Name:      name,
		SessionID: sess.ID,
		Session:   sess,
		Pos:       vector.Zero,
		LookDir:   vector.Forward,
		Health:    gp.PlayerMaxHealth,
		MaxHealth: gp.PlayerMaxHealth,
		Data:      playerdata.New(deps.Limits),
	}
	p.SetCreative(gp.CreativeByDefault)

	// A duplicate login takes over the live state, which may be newer than
	// the last save.
	if old != nil {
		p.Restore(old.Save())
		p.Dirty = true
	} else if deps.Players != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		row, err := deps.Players.Load(ctx, id)
		if err != nil {
			deps.Log.Error("讀取玩家資料失敗", zap.String("uuid", id.String()), zap.Error(err))
			reject(sess, "storage unavailable")
			return
		}
		if row != nil {
			p.Restore(row.Data)
		}
	}

	sess.PlayerName = name
	sess.PlayerUUID = id
	sess.SetState(packet.StateInWorld)
	eid := ws.AddPlayer(p)

	sess.Send(BuildHello(int(deps.Config.Network.TickRate/time.Millisecond), eid))
	playerdata.SyncOnJoin(p, ws.Channel())
	if deps.Bus != nil {
		event.Emit(deps.Bus, event.PlayerJoined{EntityID: eid, Name: name})
	}

	deps.Log.Info("玩家進入世界",
		zap.String("name", name),
		zap.String("uuid", id.String()),
		zap.Uint64("entity", uint64(eid)),
	)
}

func reject(sess *net.Session, reason string) {
	sess.Send(BuildDisconnect(reason))
	sess.FlushOutput()
	sess.Close()
}
