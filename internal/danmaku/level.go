package danmaku

import (
	"fmt"
	"strings"
)

// Level is the difficulty a volley or spellcard is fired at.
type Level int

const (
	LevelEasy Level = iota
	LevelNormal
	LevelHard
	LevelLunatic
	LevelExtra
)

var levelNames = [...]string{"easy", "normal", "hard", "lunatic", "extra"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Multiplier scales shot counts and speeds per difficulty.
func (l Level) Multiplier() float64 {
	switch l {
	case LevelEasy:
		return 0.5
	case LevelHard:
		return 1.5
	case LevelLunatic:
		return 2
	case LevelExtra:
		return 2.5
	default:
		return 1
	}
}

// ParseLevel accepts the lower-case level names used in config and yaml.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == s {
			return Level(i), nil
		}
	}
	return LevelNormal, fmt.Errorf("unknown danmaku level %q", s)
}

func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
