package handler

import (
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/net"
	"github.com/danmakucore/server/internal/net/packet"
)

// HandleDeclareSpellcard processes C_DECLARE_SPELLCARD. The player must
// hold the card unless creative; bombs are paid inside the declaration.
func HandleDeclareSpellcard(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := r.ReadS()

	p := deps.World.GetBySession(sess.ID)
	if p == nil || p.Dead {
		return
	}
	card, ok := deps.Types.Spellcards.Get(name)
	if !ok {
		deps.Log.Warn("未知的符卡", zap.String("player", p.Name), zap.String("card", name))
		return
	}
	if !p.Creative() && !p.HasCard(name) {
		deps.Log.Warn("玩家未持有符卡", zap.String("player", p.Name), zap.String("card", name))
		return
	}

	c, ok := deps.World.DeclareForPlayer(p, card, true)
	if !ok {
		deps.Log.Debug("符卡宣言被拒絕", zap.String("player", p.Name), zap.String("card", name))
		return
	}
	deps.Log.Info("玩家宣言符卡",
		zap.String("player", p.Name),
		zap.String("card", name),
		zap.Uint64("carrier", uint64(c.ID)),
	)
}
