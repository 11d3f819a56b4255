package handler

import (
	"math"

	"github.com/danmakucore/server/internal/net"
	"github.com/danmakucore/server/internal/net/packet"
	"github.com/danmakucore/server/internal/vector"
)

// HandleLook processes C_LOOK: position and view angles. The server trusts
// the client's position.
func HandleLook(sess *net.Session, r *packet.Reader, deps *Deps) {
	x, y, z := r.ReadDouble(), r.ReadDouble(), r.ReadDouble()
	yaw, pitch := float64(r.ReadF()), float64(r.ReadF())

	for _, v := range [...]float64{x, y, z, yaw, pitch} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}

	p := deps.World.GetBySession(sess.ID)
	if p == nil || p.Dead {
		return
	}
	deps.World.MovePlayer(p, vector.New(x, y, z), vector.FromSpherical(yaw, pitch))
}
