// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

// operandType classifies how many bytes follow an opcode and how to
// decode them, §III.1.9 (Common Intermediate Language instructions).
type operandType int

const (
	InlineNone operandType = iota
	ShortInlineI
	ShortInlineVar
	ShortInlineBrTarget
	InlineVar
	InlineI
	InlineI8
	InlineR
	ShortInlineR
	InlineBrTarget
	InlineField
	InlineMethod
	InlineSig
	InlineString
	InlineTok
	InlineType
	InlineSwitch
	InlinePhi
)

// opcodeInfo names one CIL opcode and its operand shape.
type opcodeInfo struct {
	name    string
	operand operandType
}

// oneByteOpcodes is indexed by the single opcode byte for every
// instruction that is not the 0xFE two-byte escape. Entries left at the
// zero value ("", InlineNone) are unassigned opcode slots.
var oneByteOpcodes = buildOneByteOpcodes()

// twoByteOpcodes is indexed by the second byte of a 0xFE-prefixed
// instruction. This is a genuinely separate table from oneByteOpcodes,
// not a re-indexing of it: the two escape spaces do not share meanings.
var twoByteOpcodes = buildTwoByteOpcodes()

func op(name string, t operandType) opcodeInfo { return opcodeInfo{name: name, operand: t} }

func buildOneByteOpcodes() [256]opcodeInfo {
	var t [256]opcodeInfo
	set := func(i int, name string, ot operandType) { t[i] = op(name, ot) }

	set(0x00, "nop", InlineNone)
	set(0x01, "break", InlineNone)
	set(0x02, "ldarg.0", InlineNone)
	set(0x03, "ldarg.1", InlineNone)
	set(0x04, "ldarg.2", InlineNone)
	set(0x05, "ldarg.3", InlineNone)
	set(0x06, "ldloc.0", InlineNone)
	set(0x07, "ldloc.1", InlineNone)
	set(0x08, "ldloc.2", InlineNone)
	set(0x09, "ldloc.3", InlineNone)
	set(0x0A, "stloc.0", InlineNone)
	set(0x0B, "stloc.1", InlineNone)
	set(0x0C, "stloc.2", InlineNone)
	set(0x0D, "stloc.3", InlineNone)
	set(0x0E, "ldarg.s", ShortInlineVar)
	set(0x0F, "ldarga.s", ShortInlineVar)
	set(0x10, "starg.s", ShortInlineVar)
	set(0x11, "ldloc.s", ShortInlineVar)
	set(0x12, "ldloca.s", ShortInlineVar)
	set(0x13, "stloc.s", ShortInlineVar)
	set(0x14, "ldnull", InlineNone)
	set(0x15, "ldc.i4.m1", InlineNone)
	set(0x16, "ldc.i4.0", InlineNone)
	set(0x17, "ldc.i4.1", InlineNone)
	set(0x18, "ldc.i4.2", InlineNone)
	set(0x19, "ldc.i4.3", InlineNone)
	set(0x1A, "ldc.i4.4", InlineNone)
	set(0x1B, "ldc.i4.5", InlineNone)
	set(0x1C, "ldc.i4.6", InlineNone)
	set(0x1D, "ldc.i4.7", InlineNone)
	set(0x1E, "ldc.i4.8", InlineNone)
	set(0x1F, "ldc.i4.s", ShortInlineI)
	set(0x20, "ldc.i4", InlineI)
	set(0x21, "ldc.i8", InlineI8)
	set(0x22, "ldc.r4", ShortInlineR)
	set(0x23, "ldc.r8", InlineR)
	set(0x25, "dup", InlineNone)
	set(0x26, "pop", InlineNone)
	set(0x27, "jmp", InlineMethod)
	set(0x28, "call", InlineMethod)
	set(0x29, "calli", InlineSig)
	set(0x2A, "ret", InlineNone)
	set(0x2B, "br.s", ShortInlineBrTarget)
	set(0x2C, "brfalse.s", ShortInlineBrTarget)
	set(0x2D, "brtrue.s", ShortInlineBrTarget)
	set(0x2E, "beq.s", ShortInlineBrTarget)
	set(0x2F, "bge.s", ShortInlineBrTarget)
	set(0x30, "bgt.s", ShortInlineBrTarget)
	set(0x31, "ble.s", ShortInlineBrTarget)
	set(0x32, "blt.s", ShortInlineBrTarget)
	set(0x33, "bne.un.s", ShortInlineBrTarget)
	set(0x34, "bge.un.s", ShortInlineBrTarget)
	set(0x35, "bgt.un.s", ShortInlineBrTarget)
	set(0x36, "ble.un.s", ShortInlineBrTarget)
	set(0x37, "blt.un.s", ShortInlineBrTarget)
	set(0x38, "br", InlineBrTarget)
	set(0x39, "brfalse", InlineBrTarget)
	set(0x3A, "brtrue", InlineBrTarget)
	set(0x3B, "beq", InlineBrTarget)
	set(0x3C, "bge", InlineBrTarget)
	set(0x3D, "bgt", InlineBrTarget)
	set(0x3E, "ble", InlineBrTarget)
	set(0x3F, "blt", InlineBrTarget)
	set(0x40, "bne.un", InlineBrTarget)
	set(0x41, "bge.un", InlineBrTarget)
	set(0x42, "bgt.un", InlineBrTarget)
	set(0x43, "ble.un", InlineBrTarget)
	set(0x44, "blt.un", InlineBrTarget)
	set(0x45, "switch", InlineSwitch)
	set(0x46, "ldind.i1", InlineNone)
	set(0x47, "ldind.u1", InlineNone)
	set(0x48, "ldind.i2", InlineNone)
	set(0x49, "ldind.u2", InlineNone)
	set(0x4A, "ldind.i4", InlineNone)
	set(0x4B, "ldind.u4", InlineNone)
	set(0x4C, "ldind.i8", InlineNone)
	set(0x4D, "ldind.i", InlineNone)
	set(0x4E, "ldind.r4", InlineNone)
	set(0x4F, "ldind.r8", InlineNone)
	set(0x50, "ldind.ref", InlineNone)
	set(0x51, "stind.ref", InlineNone)
	set(0x52, "stind.i1", InlineNone)
	set(0x53, "stind.i2", InlineNone)
	set(0x54, "stind.i4", InlineNone)
	set(0x55, "stind.i8", InlineNone)
	set(0x56, "stind.r4", InlineNone)
	set(0x57, "stind.r8", InlineNone)
	set(0x58, "add", InlineNone)
	set(0x59, "sub", InlineNone)
	set(0x5A, "mul", InlineNone)
	set(0x5B, "div", InlineNone)
	set(0x5C, "div.un", InlineNone)
	set(0x5D, "rem", InlineNone)
	set(0x5E, "rem.un", InlineNone)
	set(0x5F, "and", InlineNone)
	set(0x60, "or", InlineNone)
	set(0x61, "xor", InlineNone)
	set(0x62, "shl", InlineNone)
	set(0x63, "shr", InlineNone)
	set(0x64, "shr.un", InlineNone)
	set(0x65, "neg", InlineNone)
	set(0x66, "not", InlineNone)
	set(0x67, "conv.i1", InlineNone)
	set(0x68, "conv.i2", InlineNone)
	set(0x69, "conv.i4", InlineNone)
	set(0x6A, "conv.i8", InlineNone)
	set(0x6B, "conv.r4", InlineNone)
	set(0x6C, "conv.r8", InlineNone)
	set(0x6D, "conv.u4", InlineNone)
	set(0x6E, "conv.u8", InlineNone)
	set(0x6F, "callvirt", InlineMethod)
	set(0x70, "cpobj", InlineType)
	set(0x71, "ldobj", InlineType)
	set(0x72, "ldstr", InlineString)
	set(0x73, "newobj", InlineMethod)
	set(0x74, "castclass", InlineType)
	set(0x75, "isinst", InlineType)
	set(0x76, "conv.r.un", InlineNone)
	set(0x79, "unbox", InlineType)
	set(0x7A, "throw", InlineNone)
	set(0x7B, "ldfld", InlineField)
	set(0x7C, "ldflda", InlineField)
	set(0x7D, "stfld", InlineField)
	set(0x7E, "ldsfld", InlineField)
	set(0x7F, "ldsflda", InlineField)
	set(0x80, "stsfld", InlineField)
	set(0x81, "stobj", InlineType)
	set(0x82, "conv.ovf.i1.un", InlineNone)
	set(0x83, "conv.ovf.i2.un", InlineNone)
	set(0x84, "conv.ovf.i4.un", InlineNone)
	set(0x85, "conv.ovf.i8.un", InlineNone)
	set(0x86, "conv.ovf.u1.un", InlineNone)
	set(0x87, "conv.ovf.u2.un", InlineNone)
	set(0x88, "conv.ovf.u4.un", InlineNone)
	set(0x89, "conv.ovf.u8.un", InlineNone)
	set(0x8A, "conv.ovf.i.un", InlineNone)
	set(0x8B, "conv.ovf.u.un", InlineNone)
	set(0x8C, "box", InlineType)
	set(0x8D, "newarr", InlineType)
	set(0x8E, "ldlen", InlineNone)
	set(0x8F, "ldelema", InlineType)
	set(0x90, "ldelem.i1", InlineNone)
	set(0x91, "ldelem.u1", InlineNone)
	set(0x92, "ldelem.i2", InlineNone)
	set(0x93, "ldelem.u2", InlineNone)
	set(0x94, "ldelem.i4", InlineNone)
	set(0x95, "ldelem.u4", InlineNone)
	set(0x96, "ldelem.i8", InlineNone)
	set(0x97, "ldelem.i", InlineNone)
	set(0x98, "ldelem.r4", InlineNone)
	set(0x99, "ldelem.r8", InlineNone)
	set(0x9A, "ldelem.ref", InlineNone)
	set(0x9B, "stelem.i", InlineNone)
	set(0x9C, "stelem.i1", InlineNone)
	set(0x9D, "stelem.i2", InlineNone)
	set(0x9E, "stelem.i4", InlineNone)
	set(0x9F, "stelem.i8", InlineNone)
	set(0xA0, "stelem.r4", InlineNone)
	set(0xA1, "stelem.r8", InlineNone)
	set(0xA2, "stelem.ref", InlineNone)
	set(0xA3, "ldelem", InlineType)
	set(0xA4, "stelem", InlineType)
	set(0xA5, "unbox.any", InlineType)
	set(0xB3, "conv.ovf.i1", InlineNone)
	set(0xB4, "conv.ovf.u1", InlineNone)
	set(0xB5, "conv.ovf.i2", InlineNone)
	set(0xB6, "conv.ovf.u2", InlineNone)
	set(0xB7, "conv.ovf.i4", InlineNone)
	set(0xB8, "conv.ovf.u4", InlineNone)
	set(0xB9, "conv.ovf.i8", InlineNone)
	set(0xBA, "conv.ovf.u8", InlineNone)
	set(0xC2, "refanyval", InlineType)
	set(0xC3, "ckfinite", InlineNone)
	set(0xC6, "mkrefany", InlineType)
	set(0xD0, "ldtoken", InlineTok)
	set(0xD1, "conv.u2", InlineNone)
	set(0xD2, "conv.u1", InlineNone)
	set(0xD3, "conv.i", InlineNone)
	set(0xD4, "conv.ovf.i", InlineNone)
	set(0xD5, "conv.ovf.u", InlineNone)
	set(0xD6, "add.ovf", InlineNone)
	set(0xD7, "add.ovf.un", InlineNone)
	set(0xD8, "mul.ovf", InlineNone)
	set(0xD9, "mul.ovf.un", InlineNone)
	set(0xDA, "sub.ovf", InlineNone)
	set(0xDB, "sub.ovf.un", InlineNone)
	set(0xDC, "endfinally", InlineNone)
	set(0xDD, "leave", InlineBrTarget)
	set(0xDE, "leave.s", ShortInlineBrTarget)
	set(0xDF, "stind.i", InlineNone)
	set(0xE0, "conv.u", InlineNone)
	// 0xFE: escape to twoByteOpcodes, handled by the decoder directly.
	return t
}

func buildTwoByteOpcodes() [256]opcodeInfo {
	var t [256]opcodeInfo
	set := func(i int, name string, ot operandType) { t[i] = op(name, ot) }

	set(0x00, "arglist", InlineNone)
	set(0x01, "ceq", InlineNone)
	set(0x02, "cgt", InlineNone)
	set(0x03, "cgt.un", InlineNone)
	set(0x04, "clt", InlineNone)
	set(0x05, "clt.un", InlineNone)
	set(0x06, "ldftn", InlineMethod)
	set(0x07, "ldvirtftn", InlineMethod)
	set(0x09, "ldarg", InlineVar)
	set(0x0A, "ldarga", InlineVar)
	set(0x0B, "starg", InlineVar)
	set(0x0C, "ldloc", InlineVar)
	set(0x0D, "ldloca", InlineVar)
	set(0x0E, "stloc", InlineVar)
	set(0x0F, "localloc", InlineNone)
	set(0x11, "endfilter", InlineNone)
	set(0x12, "unaligned.", ShortInlineI)
	set(0x13, "volatile.", InlineNone)
	set(0x14, "tail.", InlineNone)
	set(0x15, "initobj", InlineType)
	set(0x16, "constrained.", InlineType)
	set(0x17, "cpblk", InlineNone)
	set(0x18, "initblk", InlineNone)
	set(0x1A, "rethrow", InlineNone)
	set(0x1C, "sizeof", InlineType)
	set(0x1D, "refanytype", InlineNone)
	set(0x1E, "readonly.", InlineNone)
	return t
}

// isLdloc reports whether name is one of the local-variable load forms.
// Checked against Ldloc_0..3 / Ldloc / Ldloc_S / Ldloca / Ldloca_S, never
// the Ldarg family, §III.3.43/3.44.
func isLdloc(name string) bool {
	switch name {
	case "ldloc.0", "ldloc.1", "ldloc.2", "ldloc.3",
		"ldloc", "ldloc.s", "ldloca", "ldloca.s":
		return true
	default:
		return false
	}
}

// isLocalVarOperand reports whether the ShortInlineVar/InlineVar operand
// of name addresses a local slot (Local) rather than an argument slot
// (Argument). Store forms (Stloc/Stloc_S) are local references too, even
// though isLdloc only recognizes the load forms.
func isLocalVarOperand(name string) bool {
	return isLdloc(name) || name == "stloc.s" || name == "stloc"
}
