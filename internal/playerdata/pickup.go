package playerdata

import "fmt"

// PickupKind is the kind of falling data a player can collect.
type PickupKind int

const (
	ScoreGreen PickupKind = iota
	ScoreBlue
	Power
	BigPower
	Life
	Bomb
)

var pickupNames = [...]string{"score_green", "score_blue", "power", "big_power", "life", "bomb"}

var pickupAmounts = [...]float32{10, 100, 0.05, 1, 1, 1}

func (k PickupKind) String() string {
	if k < 0 || int(k) >= len(pickupNames) {
		return fmt.Sprintf("pickup(%d)", int(k))
	}
	return pickupNames[k]
}

func ParsePickupKind(s string) (PickupKind, error) {
	for i, n := range pickupNames {
		if n == s {
			return PickupKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pickup kind %q", s)
}

// DefaultAmount is how much a pickup of this kind normally carries.
func (k PickupKind) DefaultAmount() float32 {
	if k < 0 || int(k) >= len(pickupAmounts) {
		return 0
	}
	return pickupAmounts[k]
}

// ApplyPickup adds amount to the counter k feeds.
func ApplyPickup(d *Data, k PickupKind, amount float32) {
	switch k {
	case ScoreGreen, ScoreBlue:
		d.AddScore(int(amount))
	case Power, BigPower:
		d.AddPower(amount)
	case Life:
		d.AddLives(int(amount))
	case Bomb:
		d.AddBombs(int(amount))
	}
}

// Collect applies a pickup to p and syncs it.
func Collect(p Holder, ch Channel, k PickupKind, amount float32) bool {
	return ChangeAndSync(p, ch, func(d *Data) { ApplyPickup(d, k, amount) })
}
