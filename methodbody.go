// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import "errors"

// Method header/body errors, spec.md §7.
var (
	ErrInvalidTinyMethodHeader = errors.New("invalid tiny method header")
	ErrInvalidFatMethodHeader  = errors.New("invalid fat method header")
	ErrUnknownOpcode           = errors.New("unknown CIL opcode")
)

// CorILMethod flags, §II.25.4.4.
const (
	corILMethodTinyFormat   = 0x2
	corILMethodFatFormat    = 0x3
	corILMethodFormatMask   = 0x3
	corILMethodMoreSects    = 0x8
	corILMethodInitLocals   = 0x10
)

// MethodDef row flags relevant to whether a row carries an IL body.
const (
	methodImplCodeTypeMask = 0x0003
	methodImplManaged      = 0x0000
	methodAttrAbstract     = 0x0400
	methodAttrPinvokeImpl  = 0x2000
)

// ExceptionHandler is one entry of a method body's exception-handler
// table, §II.25.4.6.
type ExceptionHandler struct {
	Flags         uint32 `json:"flags"`
	TryOffset     uint32 `json:"try_offset"`
	TryLength     uint32 `json:"try_length"`
	HandlerOffset uint32 `json:"handler_offset"`
	HandlerLength uint32 `json:"handler_length"`
	ClassToken    uint32 `json:"class_token,omitempty"`
	FilterOffset  uint32 `json:"filter_offset,omitempty"`
}

// OperandKind tags the decoded value held by an Operand, spec.md §3's
// operand sum: None, Int, Float, Token, StringToken, Local, Argument, or
// a switch's vector of branch targets.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandInt
	OperandFloat
	OperandToken
	OperandStringToken
	OperandLocal
	OperandArgument
	OperandBranchTarget
	OperandSwitchTargets
)

// Operand is the tagged, decoded operand of one instruction. Only the
// field(s) matching Kind are meaningful.
type Operand struct {
	Kind    OperandKind `json:"kind"`
	Int     int64       `json:"int,omitempty"`
	Float   float64     `json:"float,omitempty"`
	Token   uint32      `json:"token,omitempty"`
	Index   uint16      `json:"index,omitempty"`
	Target  uint32      `json:"target,omitempty"`
	Targets []uint32    `json:"targets,omitempty"`
}

// Instruction is one decoded CIL instruction.
type Instruction struct {
	Offset  uint32   `json:"offset"`
	Name    string   `json:"name"`
	Operand *Operand `json:"operand,omitempty"`
	Size    uint32   `json:"size"`
}

// MethodBody is a fully disassembled managed method body, §II.25.4.
type MethodBody struct {
	Token            uint32             `json:"token"`
	RVA              uint32             `json:"rva"`
	IsFat            bool               `json:"is_fat"`
	MaxStack         uint16             `json:"max_stack"`
	InitLocals       bool               `json:"init_locals"`
	LocalVarSigTok   uint32             `json:"local_var_sig_tok"`
	CodeSize         uint32             `json:"code_size"`
	Instructions     []Instruction      `json:"instructions"`
	ExceptionHandlers []ExceptionHandler `json:"exception_handlers,omitempty"`
}

// parseMethodBodies disassembles the body of every MethodDef row whose
// implementation is managed IL and whose RVA is non-zero.
func (pe *File) parseMethodBodies() map[uint32]*MethodBody {
	rows, ok := pe.CLR.MetaData.Tables[MethodDef].Content.([]MethodDefTableRow)
	if !ok {
		return nil
	}
	out := make(map[uint32]*MethodBody)
	for i := range rows {
		row := rows[i]
		rid := uint32(i + 1)

		if row.Flags&methodAttrAbstract != 0 || row.Flags&methodAttrPinvokeImpl != 0 {
			continue
		}
		if uint16(row.ImplFlags)&methodImplCodeTypeMask != methodImplManaged {
			continue
		}
		if row.RVA == 0 {
			continue
		}

		body, err := pe.parseMethodBody(row.RVA)
		if err != nil {
			if pe.logger != nil {
				pe.logger.Errorf("failed to parse method body at rva 0x%x: %v", row.RVA, err)
			}
			continue
		}
		body.Token = uint32(NewToken(MethodDef, rid))
		body.RVA = row.RVA
		out[rid] = body
	}
	return out
}

// parseMethodBody decodes the tiny or fat header, the instruction
// stream, and any exception-handler sections of the method body located
// at rva, per §II.25.4.
func (pe *File) parseMethodBody(rva uint32) (*MethodBody, error) {
	offset := pe.GetOffsetFromRva(rva)
	first, err := pe.ReadUint8(offset)
	if err != nil {
		return nil, err
	}

	body := &MethodBody{}
	var codeOffset uint32

	if first&0x3 == corILMethodTinyFormat {
		// Tiny header: low 2 bits are the format tag (always 0x2 here),
		// the remaining 6 bits (>>2) are the code size. Only the low two
		// bits are tested, so no separate 0x6 tiny-header variant is
		// recognized: a header byte whose low three bits are 0x6 decodes
		// as an ordinary tiny header, bit 2 being part of the code size.
		body.IsFat = false
		body.MaxStack = 8
		body.CodeSize = uint32(first >> 2)
		body.InitLocals = true
		codeOffset = offset + 1
	} else if first&corILMethodFormatMask == corILMethodFatFormat {
		flagsAndSize, err := pe.ReadUint16(offset)
		if err != nil {
			return nil, err
		}
		headerSizeDWords := (flagsAndSize >> 12) & 0xF
		if headerSizeDWords != 3 {
			return nil, ErrInvalidFatMethodHeader
		}
		body.IsFat = true
		body.InitLocals = flagsAndSize&corILMethodInitLocals != 0

		if body.MaxStack, err = pe.ReadUint16(offset + 2); err != nil {
			return nil, err
		}
		if body.CodeSize, err = pe.ReadUint32(offset + 4); err != nil {
			return nil, err
		}
		if body.LocalVarSigTok, err = pe.ReadUint32(offset + 8); err != nil {
			return nil, err
		}
		codeOffset = offset + 12

		if flagsAndSize&corILMethodMoreSects != 0 {
			sectOffset := codeOffset + body.CodeSize
			sectOffset = align4(sectOffset)
			handlers, err := pe.parseExceptionSections(sectOffset)
			if err != nil {
				return nil, err
			}
			body.ExceptionHandlers = handlers
		}
	} else {
		return nil, ErrInvalidTinyMethodHeader
	}

	code, err := pe.ReadBytesAtOffset(codeOffset, body.CodeSize)
	if err != nil {
		return nil, err
	}
	body.Instructions, err = pe.decodeInstructions(code)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func align4(off uint32) uint32 {
	if rem := off % 4; rem != 0 {
		return off + (4 - rem)
	}
	return off
}

// parseExceptionSections reads the chain of method-data sections
// following a fat method body's code, §II.25.4.5.
func (pe *File) parseExceptionSections(offset uint32) ([]ExceptionHandler, error) {
	var all []ExceptionHandler
	for {
		kind, err := pe.ReadUint8(offset)
		if err != nil {
			return all, err
		}
		isFat := kind&0x40 != 0
		moreSects := kind&0x80 != 0

		var handlers []ExceptionHandler
		var consumed uint32
		if isFat {
			dataSize, err := pe.ReadUint32(offset)
			if err != nil {
				return all, err
			}
			dataSize >>= 8
			// Fat clause count: 4-byte header + N * 24-byte clauses.
			count := (dataSize - 4) / 24
			off := offset + 4
			for i := uint32(0); i < count; i++ {
				h := ExceptionHandler{}
				if h.Flags, err = pe.ReadUint32(off); err != nil {
					return all, err
				}
				if h.TryOffset, err = pe.ReadUint32(off + 4); err != nil {
					return all, err
				}
				if h.TryLength, err = pe.ReadUint32(off + 8); err != nil {
					return all, err
				}
				if h.HandlerOffset, err = pe.ReadUint32(off + 12); err != nil {
					return all, err
				}
				if h.HandlerLength, err = pe.ReadUint32(off + 16); err != nil {
					return all, err
				}
				classOrFilter, err := pe.ReadUint32(off + 20)
				if err != nil {
					return all, err
				}
				if h.Flags&0x1 != 0 {
					h.FilterOffset = classOrFilter
				} else {
					h.ClassToken = classOrFilter
				}
				handlers = append(handlers, h)
				off += 24
			}
			consumed = dataSize
		} else {
			dataSize, err := pe.ReadUint8(offset + 1)
			if err != nil {
				return all, err
			}
			// Tiny clause count is a direct byte read, not a size
			// computation: the tiny header carries no 4-byte data-size
			// field the way the fat form does.
			count := uint32(dataSize)
			off := offset + 4
			for i := uint32(0); i < count; i++ {
				h := ExceptionHandler{}
				flags16, err := pe.ReadUint16(off)
				if err != nil {
					return all, err
				}
				h.Flags = uint32(flags16)
				tryOff, err := pe.ReadUint16(off + 2)
				if err != nil {
					return all, err
				}
				h.TryOffset = uint32(tryOff)
				tryLen, err := pe.ReadUint8(off + 4)
				if err != nil {
					return all, err
				}
				h.TryLength = uint32(tryLen)
				handlerOff, err := pe.ReadUint16(off + 5)
				if err != nil {
					return all, err
				}
				h.HandlerOffset = uint32(handlerOff)
				handlerLen, err := pe.ReadUint8(off + 7)
				if err != nil {
					return all, err
				}
				h.HandlerLength = uint32(handlerLen)
				classOrFilter, err := pe.ReadUint32(off + 8)
				if err != nil {
					return all, err
				}
				if h.Flags&0x1 != 0 {
					h.FilterOffset = classOrFilter
				} else {
					h.ClassToken = classOrFilter
				}
				handlers = append(handlers, h)
				off += 12
			}
			consumed = 4 + count*12
		}

		all = append(all, handlers...)
		offset = align4(offset + consumed)
		if !moreSects {
			break
		}
	}
	return all, nil
}

// decodeInstructions walks a method's IL byte stream, dispatching
// through the one-byte table or, on a 0xFE escape, the separate
// two-byte table, §III.1.9.
func (pe *File) decodeInstructions(code []byte) ([]Instruction, error) {
	var instrs []Instruction
	cur := NewCursor(code)

	for cur.Tell() < cur.Len() {
		start := cur.Tell()
		b, err := cur.ReadU8()
		if err != nil {
			return instrs, err
		}

		var info opcodeInfo
		if b == 0xFE {
			b2, err := cur.ReadU8()
			if err != nil {
				return instrs, ErrUnknownOpcode
			}
			info = twoByteOpcodes[b2]
			if info.name == "" {
				return instrs, ErrUnknownOpcode
			}
		} else {
			info = oneByteOpcodes[b]
			if info.name == "" {
				return instrs, ErrUnknownOpcode
			}
		}

		operand, err := readOperand(cur, info)
		if err != nil {
			return instrs, err
		}

		instrs = append(instrs, Instruction{
			Offset:  start,
			Name:    info.name,
			Operand: operand,
			Size:    cur.Tell() - start,
		})
	}
	return instrs, nil
}

// varOperand tags a ShortInlineVar/InlineVar operand as Local or Argument
// depending on the opcode it belongs to.
func varOperand(name string, index uint16) *Operand {
	if isLocalVarOperand(name) {
		return &Operand{Kind: OperandLocal, Index: index}
	}
	return &Operand{Kind: OperandArgument, Index: index}
}

// readOperand decodes the operand bytes following opcode info, advancing
// cur, and returns the typed operand. Branch and switch targets are
// resolved to absolute code offsets, using the position immediately after
// the operand (the end of the instruction, or of the switch's target
// list) as the base, §III.1.9.
func readOperand(cur *Cursor, info opcodeInfo) (*Operand, error) {
	switch info.operand {
	case InlineNone, InlinePhi:
		return nil, nil
	case ShortInlineI:
		v, err := cur.ReadI8()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandInt, Int: int64(v)}, nil
	case ShortInlineVar:
		v, err := cur.ReadU8()
		if err != nil {
			return nil, err
		}
		return varOperand(info.name, uint16(v)), nil
	case InlineVar:
		v, err := cur.ReadU16()
		if err != nil {
			return nil, err
		}
		return varOperand(info.name, v), nil
	case ShortInlineBrTarget:
		delta, err := cur.ReadI8()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandBranchTarget, Target: uint32(int64(cur.Tell()) + int64(delta))}, nil
	case InlineBrTarget:
		delta, err := cur.ReadI32()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandBranchTarget, Target: uint32(int64(cur.Tell()) + int64(delta))}, nil
	case InlineI:
		v, err := cur.ReadI32()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandInt, Int: int64(v)}, nil
	case InlineI8:
		v, err := cur.ReadI64()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandInt, Int: v}, nil
	case ShortInlineR:
		v, err := cur.ReadF32()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandFloat, Float: float64(v)}, nil
	case InlineR:
		v, err := cur.ReadF64()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandFloat, Float: v}, nil
	case InlineString:
		// String-token operands index the #US heap, not a metadata
		// table, so they are tagged distinctly from InlineTok et al.
		v, err := cur.ReadU32()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandStringToken, Token: v}, nil
	case InlineField, InlineMethod, InlineSig, InlineTok, InlineType:
		v, err := cur.ReadU32()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandToken, Token: v}, nil
	case InlineSwitch:
		count, err := cur.ReadU32()
		if err != nil {
			return nil, err
		}
		deltas := make([]int32, count)
		for i := range deltas {
			v, err := cur.ReadI32()
			if err != nil {
				return nil, err
			}
			deltas[i] = v
		}
		base := cur.Tell()
		targets := make([]uint32, count)
		for i, d := range deltas {
			targets[i] = uint32(int64(base) + int64(d))
		}
		return &Operand{Kind: OperandSwitchTargets, Targets: targets}, nil
	default:
		return nil, nil
	}
}
