package cpu

// specialTable is the SPECIAL-major-opcode's 64-entry secondary dispatch,
// keyed by the instruction word's bits [5:0] (funct).
var specialTable = [64]opFunc{
	0x00: opSll,
	0x02: opSrl,
	0x03: opSra,
	0x04: opSllv,
	0x06: opSrlv,
	0x07: opSrav,
	0x08: opJr,
	0x09: opJalr,
	0x0c: opSyscall,
	0x0d: opBreak,
	0x10: opMfhi,
	0x11: opMthi,
	0x12: opMflo,
	0x13: opMtlo,
	0x18: opMult,
	0x19: opMultu,
	0x1a: opDiv,
	0x1b: opDivu,
	0x20: opAdd,
	0x21: opAddu,
	0x22: opSub,
	0x23: opSubu,
	0x24: opAnd,
	0x25: opOr,
	0x26: opXor,
	0x27: opNor,
	0x2a: opSlt,
	0x2b: opSltu,
}

func opSpecial(c *CPU, d decoded) error {
	fn := specialTable[d.funct]
	if fn == nil {
		return c.implError("unimplemented SPECIAL funct")
	}
	return fn(c, d)
}

// regimmTable holds the 32 rt-keyed REGIMM (primary opcode 0x01) branch
// variants; only the 4 instructions any known BIOS/game uses are wired.
var regimmTable = [32]opFunc{
	0x00: opBltz,
	0x01: opBgez,
	0x10: opBltzal,
	0x11: opBgezal,
}

func opRegimm(c *CPU, d decoded) error {
	fn := regimmTable[d.rt]
	if fn == nil {
		return c.implError("unimplemented REGIMM rt")
	}
	return fn(c, d)
}

func opBltz(c *CPU, d decoded) error {
	branchIf(c, d, int32(c.Reg(d.rs)) < 0)
	return nil
}

func opBgez(c *CPU, d decoded) error {
	branchIf(c, d, int32(c.Reg(d.rs)) >= 0)
	return nil
}

func opBltzal(c *CPU, d decoded) error {
	taken := int32(c.Reg(d.rs)) < 0
	c.setReg(31, c.nextPC)
	branchIf(c, d, taken)
	return nil
}

func opBgezal(c *CPU, d decoded) error {
	taken := int32(c.Reg(d.rs)) >= 0
	c.setReg(31, c.nextPC)
	branchIf(c, d, taken)
	return nil
}

func opSll(c *CPU, d decoded) error {
	c.setReg(d.rd, c.Reg(d.rt)<<d.shamt)
	return nil
}

func opSrl(c *CPU, d decoded) error {
	c.setReg(d.rd, c.Reg(d.rt)>>d.shamt)
	return nil
}

func opSra(c *CPU, d decoded) error {
	c.setReg(d.rd, uint32(int32(c.Reg(d.rt))>>d.shamt))
	return nil
}

func opSllv(c *CPU, d decoded) error {
	c.setReg(d.rd, c.Reg(d.rt)<<(c.Reg(d.rs)&0x1f))
	return nil
}

func opSrlv(c *CPU, d decoded) error {
	c.setReg(d.rd, c.Reg(d.rt)>>(c.Reg(d.rs)&0x1f))
	return nil
}

func opSrav(c *CPU, d decoded) error {
	c.setReg(d.rd, uint32(int32(c.Reg(d.rt))>>(c.Reg(d.rs)&0x1f)))
	return nil
}

func opJr(c *CPU, d decoded) error {
	c.branchTo(c.Reg(d.rs))
	return nil
}

func opJalr(c *CPU, d decoded) error {
	target := c.Reg(d.rs)
	c.setReg(d.rd, c.nextPC)
	c.branchTo(target)
	return nil
}

func opSyscall(c *CPU, d decoded) error {
	c.raiseSyscall()
	return nil
}

func opBreak(c *CPU, d decoded) error {
	c.raiseBreak()
	return nil
}

func opMfhi(c *CPU, d decoded) error {
	c.setReg(d.rd, c.hi)
	return nil
}

func opMthi(c *CPU, d decoded) error {
	c.hi = c.Reg(d.rs)
	return nil
}

func opMflo(c *CPU, d decoded) error {
	c.setReg(d.rd, c.lo)
	return nil
}

func opMtlo(c *CPU, d decoded) error {
	c.lo = c.Reg(d.rs)
	return nil
}

func opMult(c *CPU, d decoded) error {
	a := int64(int32(c.Reg(d.rs)))
	b := int64(int32(c.Reg(d.rt)))
	result := uint64(a * b)
	c.hi = uint32(result >> 32)
	c.lo = uint32(result)
	return nil
}

func opMultu(c *CPU, d decoded) error {
	result := uint64(c.Reg(d.rs)) * uint64(c.Reg(d.rt))
	c.hi = uint32(result >> 32)
	c.lo = uint32(result)
	return nil
}

// opDiv implements signed division, including the two hardware-documented
// special cases: division by zero and the INT32_MIN/-1 overflow, both of
// which the real CPU defines a specific LO/HI result for instead of
// trapping.
func opDiv(c *CPU, d decoded) error {
	n := int32(c.Reg(d.rs))
	dv := int32(c.Reg(d.rt))
	switch {
	case dv == 0:
		c.hi = uint32(n)
		if n >= 0 {
			c.lo = 0xffffffff
		} else {
			c.lo = 1
		}
	case n == -0x80000000 && dv == -1:
		c.hi = 0
		c.lo = 0x80000000
	default:
		c.hi = uint32(n % dv)
		c.lo = uint32(n / dv)
	}
	return nil
}

func opDivu(c *CPU, d decoded) error {
	n := c.Reg(d.rs)
	dv := c.Reg(d.rt)
	if dv == 0 {
		c.hi = n
		c.lo = 0xffffffff
		return nil
	}
	c.hi = n % dv
	c.lo = n / dv
	return nil
}

func opAdd(c *CPU, d decoded) error {
	a := int32(c.Reg(d.rs))
	b := int32(c.Reg(d.rt))
	result := a + b
	if (b > 0 && result < a) || (b < 0 && result > a) {
		c.raiseOverflow()
		return nil
	}
	c.setReg(d.rd, uint32(result))
	return nil
}

func opAddu(c *CPU, d decoded) error {
	c.setReg(d.rd, c.Reg(d.rs)+c.Reg(d.rt))
	return nil
}

func opSub(c *CPU, d decoded) error {
	a := int32(c.Reg(d.rs))
	b := int32(c.Reg(d.rt))
	result := a - b
	if (b < 0 && result < a) || (b > 0 && result > a) {
		c.raiseOverflow()
		return nil
	}
	c.setReg(d.rd, uint32(result))
	return nil
}

func opSubu(c *CPU, d decoded) error {
	c.setReg(d.rd, c.Reg(d.rs)-c.Reg(d.rt))
	return nil
}

func opAnd(c *CPU, d decoded) error {
	c.setReg(d.rd, c.Reg(d.rs)&c.Reg(d.rt))
	return nil
}

func opOr(c *CPU, d decoded) error {
	c.setReg(d.rd, c.Reg(d.rs)|c.Reg(d.rt))
	return nil
}

func opXor(c *CPU, d decoded) error {
	c.setReg(d.rd, c.Reg(d.rs)^c.Reg(d.rt))
	return nil
}

func opNor(c *CPU, d decoded) error {
	c.setReg(d.rd, ^(c.Reg(d.rs) | c.Reg(d.rt)))
	return nil
}

func opSlt(c *CPU, d decoded) error {
	v := uint32(0)
	if int32(c.Reg(d.rs)) < int32(c.Reg(d.rt)) {
		v = 1
	}
	c.setReg(d.rd, v)
	return nil
}

func opSltu(c *CPU, d decoded) error {
	v := uint32(0)
	if c.Reg(d.rs) < c.Reg(d.rt) {
		v = 1
	}
	c.setReg(d.rd, v)
	return nil
}
