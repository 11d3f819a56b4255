package phase

import (
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/nbt"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/vector"
)

const (
	keyShape    = "shape"
	keyTemplate = "template"
	keyRepeats  = "repeats"

	defaultShapeInterval = 20
)

var defaultPattern = shape.Pattern{Kind: shape.KindCircle, Amount: 8, Distance: 0.5}

type ShapeType struct{}

func (t *ShapeType) Instantiate(m *Manager) Phase {
	return t.With(m, defaultPattern, danmaku.DefaultTemplate.Name, defaultShapeInterval, 0)
}

// With builds a shape phase firing pattern every interval ticks. After
// repeats volleys the manager moves on; zero repeats never moves on.
func (t *ShapeType) With(m *Manager, pattern shape.Pattern, template string, interval, repeats int) *ShapePhase {
	p := &ShapePhase{Base: NewBase(m, t), Pattern: pattern, Template: template, Repeats: repeats}
	p.Interval = interval
	return p
}

// ShapePhase fires one shape at the mob's target on every counter wrap.
type ShapePhase struct {
	Base
	Pattern  shape.Pattern
	Template string
	Repeats  int

	fired int
	shape shape.Shape
}

func (p *ShapePhase) Fired() int { return p.fired }

// Init builds a fresh shape so rotating shapes restart from their base angle.
func (p *ShapePhase) Init() {
	p.Base.Init()
	p.fired = 0
	s, err := shape.Build(p.Pattern, p.Entity().Rand())
	if err != nil {
		p.manager.log.Warn("shape phase has no usable shape", zap.Error(err))
	}
	p.shape = s
}

func (p *ShapePhase) ServerUpdate() {
	p.Base.ServerUpdate()
	if p.Frozen || !p.CounterStart() || p.shape == nil {
		return
	}
	e := p.Entity()
	target, ok := e.AttackTarget()
	if !ok || !e.CanSee(target) {
		return
	}
	tmpl := p.manager.types.template(p.Template)
	shape.Fire(e.Sink(), p.shape, tmpl, e.Position(), vector.AngleToEntity(e, target), p.Level, p.fired)
	p.fired++

	if p.Repeats > 0 && p.fired >= p.Repeats {
		if err := p.manager.Next(); err != nil {
			p.fired = 0
		}
	}
}

func (p *ShapePhase) Serialize() *nbt.Compound {
	c := p.Base.Serialize()
	s := nbt.NewCompound()
	s.SetString("kind", string(p.Pattern.Kind))
	s.SetInt("amount", p.Pattern.Amount)
	s.SetFloat("wide_angle", p.Pattern.WideAngle)
	s.SetFloat("base_angle", p.Pattern.BaseAngle)
	s.SetFloat("distance", p.Pattern.Distance)
	s.SetFloat("size", p.Pattern.Size)
	s.SetFloat("angle_z", p.Pattern.AngleZ)
	s.SetInt("points", p.Pattern.Points)
	c.SetCompound(keyShape, s)
	c.SetString(keyTemplate, p.Template)
	c.SetInt(keyRepeats, p.Repeats)
	return c
}

// Deserialize keeps the current pattern when the saved one is missing.
func (p *ShapePhase) Deserialize(c *nbt.Compound) {
	p.Base.Deserialize(c)
	if c.Has(keyShape) {
		s := c.Compound(keyShape)
		p.Pattern = shape.Pattern{
			Kind:      shape.Kind(s.String("kind")),
			Amount:    s.Int("amount"),
			WideAngle: s.Float("wide_angle"),
			BaseAngle: s.Float("base_angle"),
			Distance:  s.Float("distance"),
			Size:      s.Float("size"),
			AngleZ:    s.Float("angle_z"),
			Points:    s.Int("points"),
		}
	}
	p.Template = c.String(keyTemplate)
	p.Repeats = c.Int(keyRepeats)
}
