package handler

import (
	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/net/packet"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/spellcard"
)

// BuildHello builds S_HELLO, the reply to an accepted C_HELLO.
func BuildHello(tickMillis int, self ecs.EntityID) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_HELLO)
	w.WriteH(packet.ProtocolVersion)
	w.WriteH(uint16(tickMillis))
	w.WriteQ(int64(self))
	return w.Bytes()
}

// BuildCoreData builds S_CORE_DATA carrying subject's four counters.
func BuildCoreData(subject ecs.EntityID, s playerdata.Snapshot) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_CORE_DATA)
	w.WriteQ(int64(subject))
	w.WriteF(s.Power)
	w.WriteD(int32(s.Score))
	w.WriteC(byte(s.Lives))
	w.WriteC(byte(s.Bombs))
	return w.Bytes()
}

// BuildSpellcardInfo builds S_SPELLCARD_INFO. add is false when the card
// has ended and the client should take it off screen.
func BuildSpellcardInfo(card *spellcard.Spellcard, add bool) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SPELLCARD_INFO)
	w.WriteBool(add)
	w.WriteS(card.Name)
	w.WriteS(card.Touhou)
	w.WriteC(byte(card.Level))
	w.WriteD(int32(card.EndTime))
	return w.Bytes()
}

// BuildDisconnect builds S_DISCONNECT with a human readable reason.
func BuildDisconnect(reason string) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_DISCONNECT)
	w.WriteS(reason)
	return w.Bytes()
}
