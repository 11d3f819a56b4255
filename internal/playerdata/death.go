package playerdata

// Mortal is a player that can be brought back from a lethal hit.
type Mortal interface {
	Holder
	// Revive restores full health, clears the dead flag and grants
	// invulnerability for the given ticks.
	Revive(invulnerableTicks int)
}

// DeathPolicy configures InterceptDeath.
type DeathPolicy struct {
	ResetBombs        bool
	DefaultBombs      int
	InvulnerableTicks int
}

// InterceptDeath turns a lethal danmaku hit into a lost life while the
// player still has one. It returns true when the death was cancelled.
func InterceptDeath(p Mortal, ch Channel, byDanmaku bool, policy DeathPolicy) bool {
	if !byDanmaku {
		return false
	}
	d, ok := p.PlayerData()
	if !ok || d.Lives() < 1 {
		return false
	}
	ChangeAndSync(p, ch, func(d *Data) {
		if policy.ResetBombs {
			d.SetBombs(policy.DefaultBombs)
		}
		d.RemoveLife()
	})
	p.Revive(policy.InvulnerableTicks)
	return true
}
