package delta

import "github.com/Yattabyte/Installer/internal/buffer"

// Instruction opcodes, each a single ASCII byte.
const (
	opCopy   byte = 'C'
	opInsert byte = 'I'
)

// Instruction is one step of a diff payload: either a COPY from the source at
// a given offset/length, or an INSERT of literal bytes.
type Instruction struct {
	Copy   bool
	Offset uint64 // source offset, COPY only
	Length uint64 // byte count for both kinds
	Bytes  []byte // literal payload, INSERT only
}

// NewCopy constructs a COPY instruction.
func NewCopy(offset, length uint64) Instruction {
	return Instruction{Copy: true, Offset: offset, Length: length}
}

// NewInsert constructs an INSERT instruction.
func NewInsert(data []byte) Instruction {
	return Instruction{Length: uint64(len(data)), Bytes: append([]byte(nil), data...)}
}

// encode appends the instruction's wire form to b: a one-byte tag, then
// either (offset, length) or (length, bytes).
func (ins Instruction) encode(b *buffer.Buffer) {
	if ins.Copy {
		b.PushUint8(opCopy)
		b.PushUint64(ins.Offset)
		b.PushUint64(ins.Length)
		return
	}
	b.PushUint8(opInsert)
	b.PushUint64(ins.Length)
	b.PushRaw(ins.Bytes)
}

// decodeInstruction reads one instruction from r. io.EOF-like exhaustion is
// signaled by the caller checking r.Done() before calling this.
func decodeInstruction(r *buffer.Reader) (Instruction, error) {
	tag, err := r.ReadUint8()
	if err != nil {
		return Instruction{}, err
	}
	switch tag {
	case opCopy:
		offset, err := r.ReadUint64()
		if err != nil {
			return Instruction{}, err
		}
		length, err := r.ReadUint64()
		if err != nil {
			return Instruction{}, err
		}
		return NewCopy(offset, length), nil
	case opInsert:
		length, err := r.ReadUint64()
		if err != nil {
			return Instruction{}, err
		}
		data, err := r.ReadRaw(int(length))
		if err != nil {
			return Instruction{}, err
		}
		return NewInsert(data), nil
	default:
		return Instruction{}, ErrBadInstruction
	}
}
