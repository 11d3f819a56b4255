package packet

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SessionState is where a session is in the login flow.
type SessionState uint8

const (
	StateHandshake SessionState = iota // connected, awaiting C_OPCODE_HELLO
	StateInWorld                       // player entity spawned
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateInWorld:
		return "InWorld"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

func (s SessionState) bit() uint8 { return 1 << s }

var (
	ErrEmptyPacket  = errors.New("empty packet")
	ErrWrongState   = errors.New("opcode not allowed in session state")
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerFunc handles one client packet for session type S.
type HandlerFunc[S any] func(sess S, r *Reader)

type route[S any] struct {
	fn    HandlerFunc[S]
	allow uint8 // bit per SessionState
	hits  uint64
}

// Registry routes opcodes to handlers and gates them by session state.
type Registry[S any] struct {
	routes  [256]*route[S]
	unknown uint64
	log     *zap.Logger
}

func NewRegistry[S any](log *zap.Logger) *Registry[S] {
	return &Registry[S]{log: log}
}

// Register binds opcode to fn for the given states. Binding an opcode twice
// is a wiring mistake and panics.
func (reg *Registry[S]) Register(opcode byte, states []SessionState, fn HandlerFunc[S]) {
	if reg.routes[opcode] != nil {
		panic(fmt.Sprintf("opcode %d registered twice", opcode))
	}
	var allow uint8
	for _, s := range states {
		allow |= s.bit()
	}
	reg.routes[opcode] = &route[S]{fn: fn, allow: allow}
}

// Dispatch runs the handler for data[0]. Unknown opcodes are counted and
// ignored.
func (reg *Registry[S]) Dispatch(sess S, state SessionState, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyPacket
	}
	opcode := data[0]
	reg.log.Debug("收到封包",
		zap.Uint8("opcode", opcode),
		zap.Int("size", len(data)),
		zap.Stringer("state", state),
	)

	rt := reg.routes[opcode]
	if rt == nil {
		reg.unknown++
		reg.log.Debug("未知操作碼", zap.Uint8("opcode", opcode))
		return nil
	}
	if rt.allow&state.bit() == 0 {
		reg.log.Warn("操作碼在此狀態下不允許",
			zap.Uint8("opcode", opcode),
			zap.Stringer("state", state),
		)
		return fmt.Errorf("opcode %d in %s: %w", opcode, state, ErrWrongState)
	}
	rt.hits++
	return reg.call(rt.fn, sess, NewReader(data), opcode)
}

// Hits returns how many packets with opcode reached their handler.
func (reg *Registry[S]) Hits(opcode byte) uint64 {
	if rt := reg.routes[opcode]; rt != nil {
		return rt.hits
	}
	return 0
}

// Unknown returns how many packets carried an unregistered opcode.
func (reg *Registry[S]) Unknown() uint64 { return reg.unknown }

// call recovers handler panics so one bad packet cannot stop the tick loop.
func (reg *Registry[S]) call(fn HandlerFunc[S], sess S, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("處理器 panic 已恢復",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("opcode %d: %w: %v", opcode, ErrHandlerPanic, rec)
		}
	}()
	fn(sess, r)
	return nil
}
