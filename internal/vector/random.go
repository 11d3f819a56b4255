package vector

// Source is the randomness consumed by fuzz helpers. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// RandomVector returns a vector with each component in [-1, 1).
func RandomVector(rng Source) Vector3 {
	return Vector3{
		X: rng.Float64()*2 - 1,
		Y: rng.Float64()*2 - 1,
		Z: rng.Float64()*2 - 1,
	}
}

// AngleLimitRandom perturbs the yaw and pitch of angle by up to limit degrees each.
func AngleLimitRandom(angle Vector3, limit float64, rng Source) Vector3 {
	yaw := angle.Yaw() + (rng.Float64()*2-1)*limit
	pitch := angle.Pitch() + (rng.Float64()*2-1)*limit
	return FromSpherical(yaw, pitch)
}

// FuzzPosition offsets pos by a random vector inside the unit cube.
func FuzzPosition(pos Vector3, rng Source) Vector3 {
	return pos.Add(RandomVector(rng))
}
