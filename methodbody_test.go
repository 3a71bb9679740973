// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	mmap "github.com/edsrzf/mmap-go"
	"testing"
)

func newTestFileFromBytes(b []byte) *File {
	return &File{
		data: mmap.MMap(b),
		size: uint32(len(b)),
	}
}

func TestParseMethodBodyTiny(t *testing.T) {
	// header 0x12 -> format tag 0x2, code size (0x12 >> 2) = 4.
	// code: ldarg.0 (0x02), ldarg.1 (0x03), add (0x58), ret (0x2A).
	code := []byte{0x12, 0x02, 0x03, 0x58, 0x2A}
	pe := newTestFileFromBytes(code)

	body, err := pe.parseMethodBody(0)
	if err != nil {
		t.Fatalf("parseMethodBody() error = %v", err)
	}
	if body.IsFat {
		t.Error("expected tiny method body")
	}
	if body.CodeSize != 4 {
		t.Errorf("CodeSize = %d, want 4", body.CodeSize)
	}
	if body.MaxStack != 8 {
		t.Errorf("MaxStack = %d, want 8 (tiny header default)", body.MaxStack)
	}
	wantNames := []string{"ldarg.0", "ldarg.1", "add", "ret"}
	if len(body.Instructions) != len(wantNames) {
		t.Fatalf("got %d instructions, want %d", len(body.Instructions), len(wantNames))
	}
	for i, name := range wantNames {
		if body.Instructions[i].Name != name {
			t.Errorf("instruction %d = %s, want %s", i, body.Instructions[i].Name, name)
		}
	}
}

func TestParseMethodBodyFat(t *testing.T) {
	// fat header: flags_and_size u16 = fat format (0x3) | header size
	// 3 dwords in the top nibble = 0x3003, stored little-endian as
	// 0x03 0x30. MaxStack u16 = 2 (0x02 0x00).
	// CodeSize u32 = 1 (0x01 0x00 0x00 0x00). LocalVarSigTok u32 = 0.
	// code: ret (0x2A).
	body := []byte{
		0x03, 0x30, // flags (fat, no extra sections, no init-locals) + header size (3 dwords)
		0x02, 0x00, // max stack
		0x01, 0x00, 0x00, 0x00, // code size
		0x00, 0x00, 0x00, 0x00, // local var sig tok
		0x2A, // ret
	}
	pe := newTestFileFromBytes(body)

	m, err := pe.parseMethodBody(0)
	if err != nil {
		t.Fatalf("parseMethodBody() error = %v", err)
	}
	if !m.IsFat {
		t.Error("expected fat method body")
	}
	if m.MaxStack != 2 {
		t.Errorf("MaxStack = %d, want 2", m.MaxStack)
	}
	if m.CodeSize != 1 {
		t.Errorf("CodeSize = %d, want 1", m.CodeSize)
	}
	if len(m.Instructions) != 1 || m.Instructions[0].Name != "ret" {
		t.Errorf("instructions = %+v, want single ret", m.Instructions)
	}
}

func TestDecodeInstructionsTwoByteEscape(t *testing.T) {
	// 0xFE 0x09 = ldarg (InlineVar, u16 operand 0x0001).
	pe := &File{}
	instrs, err := pe.decodeInstructions([]byte{0xFE, 0x09, 0x01, 0x00})
	if err != nil {
		t.Fatalf("decodeInstructions() error = %v", err)
	}
	if len(instrs) != 1 || instrs[0].Name != "ldarg" {
		t.Fatalf("got %+v, want single ldarg", instrs)
	}
	op := instrs[0].Operand
	if op == nil || op.Kind != OperandArgument || op.Index != 1 {
		t.Errorf("operand = %+v, want Argument(1)", op)
	}
}

func TestDecodeInstructionsSwitch(t *testing.T) {
	// switch (0x45) with 2 targets: 0x00000001, 0xFFFFFFFF (-1).
	code := []byte{
		0x45,
		0x02, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF,
	}
	pe := &File{}
	instrs, err := pe.decodeInstructions(code)
	if err != nil {
		t.Fatalf("decodeInstructions() error = %v", err)
	}
	if len(instrs) != 1 {
		t.Fatalf("got %d instructions, want 1", len(instrs))
	}
	op := instrs[0].Operand
	if op == nil || op.Kind != OperandSwitchTargets || len(op.Targets) != 2 {
		t.Fatalf("operand = %+v, want 2 switch targets", op)
	}
	// Base offset is the end of the switch's operand list: 1 (opcode) +
	// 4 (count) + 2*4 (targets) = 13. Absolute targets = base + delta.
	if op.Targets[0] != 14 || op.Targets[1] != 12 {
		t.Errorf("targets = %v, want [14 12]", op.Targets)
	}
}

func TestIsLdloc(t *testing.T) {
	for _, name := range []string{"ldloc.0", "ldloc.1", "ldloc", "ldloc.s", "ldloca", "ldloca.s"} {
		if !isLdloc(name) {
			t.Errorf("isLdloc(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"ldarg.1", "ldarg.2", "ldarg", "stloc.0"} {
		if isLdloc(name) {
			t.Errorf("isLdloc(%q) = true, want false", name)
		}
	}
}

func TestIsLocalVarOperand(t *testing.T) {
	for _, name := range []string{"ldloc.s", "ldloca.s", "stloc.s", "ldloc", "ldloca", "stloc"} {
		if !isLocalVarOperand(name) {
			t.Errorf("isLocalVarOperand(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"ldarg.s", "ldarga.s", "starg.s", "ldarg", "ldarga", "starg"} {
		if isLocalVarOperand(name) {
			t.Errorf("isLocalVarOperand(%q) = true, want false", name)
		}
	}
}
