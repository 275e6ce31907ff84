package vm

import "github.com/retrobas/rbasic/symbols"

// Run executes the bound program to completion (HALT) or until an
// error occurs. It is the VM's fetch-decode-dispatch loop, grounded in
// the teacher's switch-over-opcode Run loop (vm/core.go, vm/run.go),
// generalized from the teacher's raw Cell array to a struct-based
// Instr array: jump operands are opcode indices directly rather than
// separate operand cells, since Instr already carries its immediates.
func (i *Instance) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			if be, ok := e.(*Error); ok {
				err = be.WithLine(i.lastLine)
				return
			}
			panic(e)
		}
	}()

	code := i.Program.Code
	for i.pc < len(code) {
		if i.pc < len(i.Program.PCToLine) {
			i.lastLine = i.Program.PCToLine[i.pc]
		}
		instr := code[i.pc]
		next := i.pc + 1

		switch instr.Op {
		case OpNop:
			// no-op

		case OpHalt:
			return nil

		case OpPushNum:
			i.push(Num(instr.D))

		case OpPushStr:
			i.push(Str(instr.S))

		case OpLoad:
			v := i.store.LoadScalar(instr.A, symbols.IsStringSlot(symbols.Slot(instr.A)))
			i.push(v)

		case OpStore:
			v, ok := i.pop()
			if !ok {
				return i.fault(stackUnderflow())
			}
			if err := i.store.StoreScalar(instr.A, symbols.IsStringSlot(symbols.Slot(instr.A)), v); err != nil {
				return i.fault(err)
			}

		case OpDimArr:
			bounds, err := i.popInts(instr.B)
			if err != nil {
				return i.fault(err)
			}
			if err := i.store.DimArray(instr.A, symbols.IsStringSlot(symbols.Slot(instr.A)), bounds); err != nil {
				return i.fault(err)
			}

		case OpLoadArr:
			idxs, err := i.popInts(instr.B)
			if err != nil {
				return i.fault(err)
			}
			v, err := i.store.LoadArray(instr.A, symbols.IsStringSlot(symbols.Slot(instr.A)), idxs)
			if err != nil {
				return i.fault(err)
			}
			i.push(v)

		case OpStoreArr:
			v, ok := i.pop()
			if !ok {
				return i.fault(stackUnderflow())
			}
			idxs, err := i.popInts(instr.B)
			if err != nil {
				return i.fault(err)
			}
			if err := i.store.StoreArray(instr.A, symbols.IsStringSlot(symbols.Slot(instr.A)), idxs, v); err != nil {
				return i.fault(err)
			}

		case OpAdd:
			rhs, lhs, ok := i.pop2()
			if !ok {
				return i.fault(stackUnderflow())
			}
			if lhs.IsString() || rhs.IsString() {
				i.push(Str(lhs.CanonicalString() + rhs.CanonicalString()))
			} else {
				i.push(Num(lhs.NumVal() + rhs.NumVal()))
			}

		case OpSub, OpMul, OpDiv, OpPow, OpMod:
			rhs, lhs, err := i.popNum2()
			if err != nil {
				return i.fault(err)
			}
			v, err := arith(instr.Op, lhs, rhs)
			if err != nil {
				return i.fault(err)
			}
			i.push(Num(v))

		case OpNeg:
			v, err := i.popNum()
			if err != nil {
				return i.fault(err)
			}
			i.push(Num(-v))

		case OpCEq, OpCNe, OpCLt, OpCLe, OpCGt, OpCGe:
			rhs, lhs, ok := i.pop2()
			if !ok {
				return i.fault(stackUnderflow())
			}
			i.push(compare(instr.Op, lhs, rhs))

		case OpAnd, OpOr:
			rhs, lhs, ok := i.pop2()
			if !ok {
				return i.fault(stackUnderflow())
			}
			lt, err := lhs.Truthy()
			if err != nil {
				return i.fault(err)
			}
			rt, err := rhs.Truthy()
			if err != nil {
				return i.fault(err)
			}
			if instr.Op == OpAnd {
				i.push(Bool(lt && rt))
			} else {
				i.push(Bool(lt || rt))
			}

		case OpNot:
			v, ok := i.pop()
			if !ok {
				return i.fault(stackUnderflow())
			}
			t, err := v.Truthy()
			if err != nil {
				return i.fault(err)
			}
			i.push(Bool(!t))

		case OpJmp:
			next = instr.A

		case OpJz:
			v, ok := i.pop()
			if !ok {
				return i.fault(stackUnderflow())
			}
			t, err := v.Truthy()
			if err != nil {
				return i.fault(err)
			}
			if !t {
				next = instr.A
			}

		case OpGosub:
			i.returns.push(next)
			next = instr.A

		case OpRetsub:
			pc, ok := i.returns.pop()
			if !ok {
				return i.fault(&Error{Kind: ReturnWithoutGosub})
			}
			next = pc

		case OpOnGoto, OpOnGosub:
			k, err := i.popInt()
			if err != nil {
				return i.fault(err)
			}
			if instr.A >= 0 && instr.A < len(i.Program.JumpTables) {
				table := i.Program.JumpTables[instr.A]
				if k >= 1 && k <= len(table) {
					if instr.Op == OpOnGosub {
						i.returns.push(next)
					}
					next = table[k-1]
				}
			}

		case OpForInit:
			step, err := i.popNum()
			if err != nil {
				return i.fault(err)
			}
			end, err := i.popNum()
			if err != nil {
				return i.fault(err)
			}
			i.loops.push(loopFrame{slot: instr.A, end: end, step: step, checkPC: next, bodyPC: -1, exitPC: -1})

		case OpForCheck:
			f, ok := i.loops.top()
			if !ok {
				return i.fault(&Error{Kind: NextWithoutFor})
			}
			if f.bodyPC == -1 {
				f.bodyPC = instr.A
			}
			f.exitPC = int(instr.D)
			cur := i.store.LoadScalar(f.slot, false).NumVal()
			cont := f.step >= 0 && cur <= f.end || f.step < 0 && cur >= f.end
			if cont {
				next = f.bodyPC
			} else {
				i.loops.pop()
				next = f.exitPC
			}

		case OpForIncr:
			f, ok := i.loops.popToSlot(instr.A)
			if !ok {
				return i.fault(&Error{Kind: NextWithoutFor})
			}
			cur := i.store.LoadScalar(f.slot, false).NumVal() + f.step
			if err := i.store.StoreScalar(f.slot, false, Num(cur)); err != nil {
				return i.fault(err)
			}
			cont := f.step >= 0 && cur <= f.end || f.step < 0 && cur >= f.end
			if cont {
				i.loops.push(f)
				next = f.checkPC
			}

		case OpCallFn:
			n, err := i.execCallFn(FnID(instr.A), instr.B)
			if err != nil {
				return i.fault(err)
			}
			next = n

		case OpPrint:
			v, ok := i.pop()
			if !ok {
				return i.fault(stackUnderflow())
			}
			i.print.write(i.console, v.CanonicalString())

		case OpPrintSpc:
			i.print.zonePad(i.console)

		case OpPrintNl:
			i.print.newline(i.console)

		case OpPrintSuppressNl:
			// marker only: the compiler simply omits the following
			// OpPrintNl; nothing to execute here.

		default:
			return i.fault(&Error{Kind: UndefdFunction, Msg: "unknown opcode"})
		}

		i.pc = next
		i.insCount++
	}
	return nil
}

func (i *Instance) fault(err error) error {
	if be, ok := err.(*Error); ok {
		return be.WithLine(i.lastLine)
	}
	return err
}

func stackUnderflow() *Error {
	return &Error{Kind: TypeMismatch, Msg: "stack underflow"}
}

// pop2 pops rhs then lhs (rhs was pushed last) and returns them in
// (rhs, lhs) order, matching the common binary-opcode pop order.
func (i *Instance) pop2() (rhs, lhs Value, ok bool) {
	rhs, ok = i.pop()
	if !ok {
		return
	}
	lhs, ok = i.pop()
	return
}

func (i *Instance) popNum2() (rhs, lhs float64, err error) {
	r, l, ok := i.pop2()
	if !ok {
		return 0, 0, stackUnderflow()
	}
	if r.IsString() || l.IsString() {
		return 0, 0, errTypeMismatch("arithmetic on string operand")
	}
	return r.NumVal(), l.NumVal(), nil
}

func (i *Instance) popInts(n int) ([]int, error) {
	vals := make([]int, n)
	for k := n - 1; k >= 0; k-- {
		v, err := i.popInt()
		if err != nil {
			return nil, err
		}
		vals[k] = v
	}
	return vals, nil
}

func arith(op Op, lhs, rhs float64) (float64, error) {
	switch op {
	case OpSub:
		return lhs - rhs, nil
	case OpMul:
		return lhs * rhs, nil
	case OpDiv:
		if rhs == 0 {
			return 0, errDivByZero()
		}
		return lhs / rhs, nil
	case OpPow:
		return pow(lhs, rhs), nil
	case OpMod:
		if rhs == 0 {
			return 0, errDivByZero()
		}
		return mod(lhs, rhs), nil
	}
	return 0, errTypeMismatch("bad arithmetic opcode")
}

func compare(op Op, lhs, rhs Value) Value {
	if !lhs.IsString() && !rhs.IsString() {
		a, b := lhs.NumVal(), rhs.NumVal()
		switch op {
		case OpCEq:
			return Bool(a == b)
		case OpCNe:
			return Bool(a != b)
		case OpCLt:
			return Bool(a < b)
		case OpCLe:
			return Bool(a <= b)
		case OpCGt:
			return Bool(a > b)
		case OpCGe:
			return Bool(a >= b)
		}
	}
	a, b := lhs.CanonicalString(), rhs.CanonicalString()
	switch op {
	case OpCEq:
		return Bool(a == b)
	case OpCNe:
		return Bool(a != b)
	case OpCLt:
		return Bool(a < b)
	case OpCLe:
		return Bool(a <= b)
	case OpCGt:
		return Bool(a > b)
	case OpCGe:
		return Bool(a >= b)
	}
	return False
}
