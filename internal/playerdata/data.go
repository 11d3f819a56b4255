// Package playerdata tracks the danmaku resources of a player: power,
// score, lives and bombs.
package playerdata

import (
	"github.com/danmakucore/server/internal/nbt"
)

// Limits bound the counters and give the values of a new player.
type Limits struct {
	MaxPower     float32
	MaxLives     int
	MaxBombs     int
	DefaultLives int
	DefaultBombs int
}

func DefaultLimits() Limits {
	return Limits{MaxPower: 4, MaxLives: 9, MaxBombs: 9, DefaultLives: 3, DefaultBombs: 2}
}

// Snapshot is the value sent to clients.
type Snapshot struct {
	Power float32
	Score int
	Lives int
	Bombs int
}

// Data is clamped on every write: power to [0, MaxPower], lives and bombs
// to [0, Max], score to [0, ∞).
type Data struct {
	power  float32
	score  int
	lives  int
	bombs  int
	limits Limits
}

func New(l Limits) *Data {
	d := &Data{limits: l}
	d.SetLives(l.DefaultLives)
	d.SetBombs(l.DefaultBombs)
	return d
}

func (d *Data) Limits() Limits { return d.limits }
func (d *Data) Power() float32 { return d.power }
func (d *Data) Score() int     { return d.score }
func (d *Data) Lives() int     { return d.lives }
func (d *Data) Bombs() int     { return d.bombs }

func (d *Data) SetPower(v float32) {
	d.power = min(max(v, 0), d.limits.MaxPower)
}

func (d *Data) AddPower(v float32)    { d.SetPower(d.power + v) }
func (d *Data) RemovePower(v float32) { d.SetPower(d.power - v) }

func (d *Data) SetScore(v int) { d.score = max(v, 0) }
func (d *Data) AddScore(v int) { d.SetScore(d.score + v) }

func (d *Data) SetLives(v int) { d.lives = clampInt(v, d.limits.MaxLives) }
func (d *Data) AddLives(v int) { d.SetLives(d.lives + v) }
func (d *Data) RemoveLife()    { d.AddLives(-1) }

func (d *Data) SetBombs(v int) { d.bombs = clampInt(v, d.limits.MaxBombs) }
func (d *Data) AddBombs(v int) { d.SetBombs(d.bombs + v) }
func (d *Data) RemoveBomb()    { d.AddBombs(-1) }

func clampInt(v, hi int) int {
	return min(max(v, 0), hi)
}

func (d *Data) Snapshot() Snapshot {
	return Snapshot{Power: d.power, Score: d.score, Lives: d.lives, Bombs: d.bombs}
}

// Apply copies s into d, clamped to d's limits.
func (d *Data) Apply(s Snapshot) {
	d.SetPower(s.Power)
	d.SetScore(s.Score)
	d.SetLives(s.Lives)
	d.SetBombs(s.Bombs)
}

const (
	keyPower = "power"
	keyScore = "score"
	keyLives = "lives"
	keyBombs = "bombs"
)

func (d *Data) Serialize() *nbt.Compound {
	c := nbt.NewCompound()
	c.SetFloat(keyPower, float64(d.power))
	c.SetInt(keyScore, d.score)
	c.SetInt(keyLives, d.lives)
	c.SetInt(keyBombs, d.bombs)
	return c
}

// Deserialize leaves counters missing from c at their current value.
func (d *Data) Deserialize(c *nbt.Compound) {
	s := d.Snapshot()
	if c.Has(keyPower) {
		s.Power = float32(c.Float(keyPower))
	}
	if c.Has(keyScore) {
		s.Score = c.Int(keyScore)
	}
	if c.Has(keyLives) {
		s.Lives = c.Int(keyLives)
	}
	if c.Has(keyBombs) {
		s.Bombs = c.Int(keyBombs)
	}
	d.Apply(s)
}
