package danmaku

// ShotData describes what a single danmaku looks like and does on hit.
type ShotData struct {
	Form   string  `yaml:"form"`
	Color  uint32  `yaml:"color"`
	Damage float64 `yaml:"damage"`
	SizeX  float64 `yaml:"size_x"`
	SizeY  float64 `yaml:"size_y"`
	SizeZ  float64 `yaml:"size_z"`
	Delay  int     `yaml:"delay"` // ticks before it starts moving
	End    int     `yaml:"end"`   // lifetime in ticks
}

// AverageSize is the mean extent, used for hit radius and pierce checks.
func (s ShotData) AverageSize() float64 {
	return (s.SizeX + s.SizeY + s.SizeZ) / 3
}

// Template is the reference projectile a shape copies for every directive.
type Template struct {
	Name  string   `yaml:"name"`
	Shot  ShotData `yaml:"shot"`
	Speed float64  `yaml:"speed"` // blocks per tick
}

// DefaultShot mirrors the host's plain sphere shot.
var DefaultShot = ShotData{
	Form:   "sphere",
	Color:  0xFF0000,
	Damage: 2,
	SizeX:  0.5,
	SizeY:  0.5,
	SizeZ:  0.5,
	End:    80,
}

var DefaultTemplate = Template{Name: "default", Shot: DefaultShot, Speed: 0.4}
