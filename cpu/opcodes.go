package cpu

import "github.com/hollow-vale/rsx/bit"

// opFunc is one primary or SPECIAL opcode handler. Returning a non-nil
// error signals an implementation-level fault (spec.md §7); a guest-level
// fault is instead reported by calling one of CPU's raise* helpers and
// returning nil.
type opFunc func(c *CPU, d decoded) error

// primaryTable is the 64-entry dispatch table keyed by the instruction
// word's bits [31:26]. Static-array dispatch (rather than a map or a type
// switch) keeps the decode hot path branch-predictor-friendly, matching
// the [64]opFunc commitment recorded in DESIGN.md.
var primaryTable = [64]opFunc{
	0x00: opSpecial,
	0x01: opRegimm,
	0x02: opJ,
	0x03: opJal,
	0x04: opBeq,
	0x05: opBne,
	0x06: opBlez,
	0x07: opBgtz,
	0x08: opAddi,
	0x09: opAddiu,
	0x0a: opSlti,
	0x0b: opSltiu,
	0x0c: opAndi,
	0x0d: opOri,
	0x0e: opXori,
	0x0f: opLui,
	0x10: opCop0,
	0x12: opCop2,
	0x20: opLb,
	0x21: opLh,
	0x22: opLwl,
	0x23: opLw,
	0x24: opLbu,
	0x25: opLhu,
	0x26: opLwr,
	0x28: opSb,
	0x29: opSh,
	0x2a: opSwl,
	0x2b: opSw,
	0x2e: opSwr,
	0x30: opLwc0,
	0x32: opLwc2,
	0x38: opSwc0,
	0x3a: opSwc2,
}

func signImm(d decoded) uint32 { return bit.SignExtendImm16(d.imm16) }

func opJ(c *CPU, d decoded) error {
	target := (c.nextPC & 0xf0000000) | (d.imm26 << 2)
	c.branchTo(target)
	return nil
}

func opJal(c *CPU, d decoded) error {
	c.setReg(31, c.nextPC)
	target := (c.nextPC & 0xf0000000) | (d.imm26 << 2)
	c.branchTo(target)
	return nil
}

func branchIf(c *CPU, d decoded, taken bool) {
	if taken {
		target := c.pc + (signImm(d) << 2)
		c.branchTo(target)
	}
}

func opBeq(c *CPU, d decoded) error {
	branchIf(c, d, c.Reg(d.rs) == c.Reg(d.rt))
	return nil
}

func opBne(c *CPU, d decoded) error {
	branchIf(c, d, c.Reg(d.rs) != c.Reg(d.rt))
	return nil
}

func opBlez(c *CPU, d decoded) error {
	branchIf(c, d, int32(c.Reg(d.rs)) <= 0)
	return nil
}

func opBgtz(c *CPU, d decoded) error {
	branchIf(c, d, int32(c.Reg(d.rs)) > 0)
	return nil
}

func opAddi(c *CPU, d decoded) error {
	a := int32(c.Reg(d.rs))
	b := int32(signImm(d))
	result := a + b
	if (b > 0 && result < a) || (b < 0 && result > a) {
		c.raiseOverflow()
		return nil
	}
	c.setReg(d.rt, uint32(result))
	return nil
}

func opAddiu(c *CPU, d decoded) error {
	c.setReg(d.rt, c.Reg(d.rs)+signImm(d))
	return nil
}

func opSlti(c *CPU, d decoded) error {
	v := uint32(0)
	if int32(c.Reg(d.rs)) < int32(signImm(d)) {
		v = 1
	}
	c.setReg(d.rt, v)
	return nil
}

func opSltiu(c *CPU, d decoded) error {
	v := uint32(0)
	if c.Reg(d.rs) < signImm(d) {
		v = 1
	}
	c.setReg(d.rt, v)
	return nil
}

func opAndi(c *CPU, d decoded) error {
	c.setReg(d.rt, c.Reg(d.rs)&d.imm16)
	return nil
}

func opOri(c *CPU, d decoded) error {
	c.setReg(d.rt, c.Reg(d.rs)|d.imm16)
	return nil
}

func opXori(c *CPU, d decoded) error {
	c.setReg(d.rt, c.Reg(d.rs)^d.imm16)
	return nil
}

func opLui(c *CPU, d decoded) error {
	c.setReg(d.rt, d.imm16<<16)
	return nil
}

// --- loads/stores ---

func (c *CPU) loadAddr(d decoded) uint32 {
	return c.Reg(d.rs) + signImm(d)
}

func opLb(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	v := bit.SignExtend8(c.bus.Read8(addr))
	c.setRegDelayed(d.rt, v)
	return nil
}

func opLbu(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	c.setRegDelayed(d.rt, uint32(c.bus.Read8(addr)))
	return nil
}

func opLh(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	if addr%2 != 0 {
		c.raiseAddressError(false, addr)
		return nil
	}
	c.setRegDelayed(d.rt, bit.SignExtend16(c.bus.Read16(addr)))
	return nil
}

func opLhu(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	if addr%2 != 0 {
		c.raiseAddressError(false, addr)
		return nil
	}
	c.setRegDelayed(d.rt, uint32(c.bus.Read16(addr)))
	return nil
}

func opLw(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	if addr%4 != 0 {
		c.raiseAddressError(false, addr)
		return nil
	}
	c.setRegDelayed(d.rt, c.bus.Read32(addr))
	return nil
}

// opLwl/opLwr implement the unaligned-word loads, merging into the target
// register's (rt's) in-flight value (loadDelayBase), not the stale
// register-file contents, per the load-delay design in DESIGN.md.
func opLwl(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	aligned := addr &^ 3
	word := c.bus.Read32(aligned)
	cur := c.loadDelayBase(d.rt)
	var v uint32
	switch addr & 3 {
	case 0:
		v = (cur & 0x00ffffff) | (word << 24)
	case 1:
		v = (cur & 0x0000ffff) | (word << 16)
	case 2:
		v = (cur & 0x000000ff) | (word << 8)
	case 3:
		v = word
	}
	c.setRegDelayed(d.rt, v)
	return nil
}

func opLwr(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	aligned := addr &^ 3
	word := c.bus.Read32(aligned)
	cur := c.loadDelayBase(d.rt)
	var v uint32
	switch addr & 3 {
	case 0:
		v = word
	case 1:
		v = (cur & 0xff000000) | (word >> 8)
	case 2:
		v = (cur & 0xffff0000) | (word >> 16)
	case 3:
		v = (cur & 0xffffff00) | (word >> 24)
	}
	c.setRegDelayed(d.rt, v)
	return nil
}

func opSb(c *CPU, d decoded) error {
	if c.cop0.IsolateCache() {
		return nil
	}
	c.bus.Write8(c.loadAddr(d), uint8(c.Reg(d.rt)))
	return nil
}

func opSh(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	if addr%2 != 0 {
		c.raiseAddressError(true, addr)
		return nil
	}
	if c.cop0.IsolateCache() {
		return nil
	}
	c.bus.Write16(addr, uint16(c.Reg(d.rt)))
	return nil
}

func opSw(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	if addr%4 != 0 {
		c.raiseAddressError(true, addr)
		return nil
	}
	if c.cop0.IsolateCache() {
		return nil
	}
	c.bus.Write32(addr, c.Reg(d.rt))
	return nil
}

func opSwl(c *CPU, d decoded) error {
	if c.cop0.IsolateCache() {
		return nil
	}
	addr := c.loadAddr(d)
	aligned := addr &^ 3
	word := c.bus.Read32(aligned)
	rt := c.Reg(d.rt)
	var v uint32
	switch addr & 3 {
	case 0:
		v = (word & 0xffffff00) | (rt >> 24)
	case 1:
		v = (word & 0xffff0000) | (rt >> 16)
	case 2:
		v = (word & 0xff000000) | (rt >> 8)
	case 3:
		v = rt
	}
	c.bus.Write32(aligned, v)
	return nil
}

func opSwr(c *CPU, d decoded) error {
	if c.cop0.IsolateCache() {
		return nil
	}
	addr := c.loadAddr(d)
	aligned := addr &^ 3
	word := c.bus.Read32(aligned)
	rt := c.Reg(d.rt)
	var v uint32
	switch addr & 3 {
	case 0:
		v = rt
	case 1:
		v = (word & 0x000000ff) | (rt << 8)
	case 2:
		v = (word & 0x0000ffff) | (rt << 16)
	case 3:
		v = (word & 0x00ffffff) | (rt << 24)
	}
	c.bus.Write32(aligned, v)
	return nil
}

// --- coprocessor 0 ---

func opCop0(c *CPU, d decoded) error {
	switch d.rs {
	case 0x00: // MFC0
		c.setRegDelayed(d.rt, c.cop0.Read(d.rd))
	case 0x04: // MTC0
		c.cop0.Write(d.rd, c.Reg(d.rt))
	case 0x10: // RFE family; only funct 0x10 (RFE) is defined
		if d.funct == 0x10 {
			c.cop0.RFE()
		}
	default:
		return c.implError("unhandled COP0 sub-opcode")
	}
	return nil
}

// --- coprocessor 2 (GTE) ---

func opLwc2(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	c.gte.WriteData(d.rt, c.bus.Read32(addr))
	return nil
}

func opSwc2(c *CPU, d decoded) error {
	addr := c.loadAddr(d)
	c.bus.Write32(addr, c.gte.ReadData(d.rt))
	return nil
}

// opCop2 dispatches MFC2/CFC2/MTC2/CTC2 and, when bit 25 of the
// instruction word is set (equivalently rs's top bit, since
// (command>>25)&1 == (opcode>>25)&1 for any COP2 instruction), a GTE
// command word. The 0x25 check in spec.md §4.3 is this same condition
// phrased as "primary opcode field equals 0x25 when combined with the
// COP2 selector bit" -- (0x12<<1)|1 == 0x25.
func opCop2(c *CPU, d decoded) error {
	if d.word&(1<<25) != 0 {
		c.gte.Execute(d.word & 0x1ffffff)
		return nil
	}
	switch d.rs {
	case 0x00: // MFC2
		c.setRegDelayed(d.rt, c.gte.ReadData(d.rd))
	case 0x02: // CFC2
		c.setRegDelayed(d.rt, c.gte.ReadControl(d.rd))
	case 0x04: // MTC2
		c.gte.WriteData(d.rd, c.Reg(d.rt))
	case 0x06: // CTC2
		c.gte.WriteControl(d.rd, c.Reg(d.rt))
	default:
		return c.implError("unhandled COP2 sub-opcode")
	}
	return nil
}

// opLwc0/opSwc0 are defined opcodes with no COP0 data registers to target;
// real hardware takes a coprocessor-unusable exception here, but no BIOS
// or game is documented to issue them, so this just reports the
// implementation-level fault a future regression would need.
func opLwc0(c *CPU, d decoded) error {
	return c.implError("LWC0 has no COP0 data registers")
}

func opSwc0(c *CPU, d decoded) error {
	return c.implError("SWC0 has no COP0 data registers")
}
