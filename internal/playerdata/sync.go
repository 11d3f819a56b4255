package playerdata

import (
	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/vector"
)

// Channel pushes snapshots to clients. Delivery is best effort; a failed
// send never undoes the change that caused it.
type Channel interface {
	// SendTo sends subject's snapshot to the player's own client.
	SendTo(player ecs.EntityID, subject ecs.EntityID, s Snapshot)
	// SendAround sends subject's snapshot to every client near center.
	SendAround(center vector.Vector3, radius float64, subject ecs.EntityID, s Snapshot)
}

// Holder is an entity that may carry player data.
type Holder interface {
	ID() ecs.EntityID
	Position() vector.Vector3
	PlayerData() (*Data, bool)
}

// ChangeAndSync applies mutate to p's data and then sends the result to
// p. It reports false, doing nothing, when p has no data.
func ChangeAndSync(p Holder, ch Channel, mutate func(*Data)) bool {
	d, ok := p.PlayerData()
	if !ok {
		return false
	}
	mutate(d)
	ch.SendTo(p.ID(), p.ID(), d.Snapshot())
	return true
}

// ChangeAndSyncAround is ChangeAndSync for data other clients display,
// sent to everyone within radius of e.
func ChangeAndSyncAround(e Holder, ch Channel, radius float64, mutate func(*Data)) bool {
	d, ok := e.PlayerData()
	if !ok {
		return false
	}
	mutate(d)
	ch.SendAround(e.Position(), radius, e.ID(), d.Snapshot())
	return true
}

// SyncOnJoin sends the current data on login and dimension change.
func SyncOnJoin(p Holder, ch Channel) bool {
	return ChangeAndSync(p, ch, func(*Data) {})
}

// CopyOnClone carries all four counters to a respawned player entity. A
// clone caused by death keeps the new entity's own data.
func CopyOnClone(old, cloned Holder, ch Channel, wasDeath bool) bool {
	if wasDeath {
		return false
	}
	prev, ok := old.PlayerData()
	if !ok {
		return false
	}
	s := prev.Snapshot()
	return ChangeAndSync(cloned, ch, func(d *Data) { d.Apply(s) })
}
