package packet

// Client opcodes.
const (
	C_OPCODE_HELLO             byte = 0x01 // uuid, name, protocol version
	C_OPCODE_LOOK              byte = 0x02 // x, y, z, yaw, pitch
	C_OPCODE_DECLARE_SPELLCARD byte = 0x03 // spellcard name
	C_OPCODE_QUIT              byte = 0x04
)

// Server opcodes.
const (
	S_OPCODE_HELLO          byte = 0x40 // protocol version, tick rate ms, entity id
	S_OPCODE_CORE_DATA      byte = 0x41 // subject id, power, score, lives, bombs
	S_OPCODE_SPELLCARD_INFO byte = 0x42 // add/remove, name, touhou user, level, end time
	S_OPCODE_DISCONNECT     byte = 0x43 // reason
)

// ProtocolVersion is checked against C_OPCODE_HELLO.
const ProtocolVersion = 3
