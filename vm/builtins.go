package vm

import (
	"math"
	"strconv"
	"strings"
)

// lineShorthandBit flags a LINE statement's shorthand form
// (LINE -(x2,y2) omitting the starting point, continuing from the
// current pen) in bit 30 of CALLFN's B (argc) operand, per spec.md §4.3/§4.4.
const lineShorthandBit = 1 << 30

// execCallFn executes one built-in function or statement call: it pops
// argc arguments (reversed back into source left-to-right order),
// performs the call, pushes a result unless fn is void, and returns the
// next PC (always pc+1; built-ins never alter control flow).
func (i *Instance) execCallFn(fn FnID, argcField int) (int, error) {
	next := i.pc + 1

	if fn == FnLine {
		shorthand := argcField&lineShorthandBit != 0
		argc := argcField &^ lineShorthandBit
		return next, i.callLine(argc, shorthand)
	}

	if fn == FnInput {
		return next, i.callInput(argcField)
	}

	args, err := i.popArgs(argcField)
	if err != nil {
		return next, err
	}

	v, err := i.dispatchFn(fn, args)
	if err != nil {
		return next, err
	}
	if !FnVoid[fn] {
		i.push(v)
	}
	return next, nil
}

// popArgs pops n values in LIFO order and reverses them, recovering the
// original left-to-right source argument order (spec.md §4.4 "CALLFN
// argument order").
func (i *Instance) popArgs(n int) ([]Value, error) {
	args := make([]Value, n)
	for k := n - 1; k >= 0; k-- {
		v, ok := i.pop()
		if !ok {
			return nil, stackUnderflow()
		}
		args[k] = v
	}
	return args, nil
}

func argNum(args []Value, k int) (float64, error) {
	if k >= len(args) {
		return 0, &Error{Kind: ArgCountMismatch}
	}
	if args[k].IsString() {
		return 0, errTypeMismatch("expected numeric argument")
	}
	return args[k].NumVal(), nil
}

func argStr(args []Value, k int) (string, error) {
	if k >= len(args) {
		return "", &Error{Kind: ArgCountMismatch}
	}
	return args[k].CanonicalString(), nil
}

func argInt(args []Value, k int) (int, error) {
	n, err := argNum(args, k)
	return int(n), err
}

// callInput implements the INPUT built-in, whose B operand carries the
// target slot (packed as (slot<<1)|stringBit) rather than an argument
// count, per spec.md §9 "INPUT as a special CALLFN".
func (i *Instance) callInput(slotField int) error {
	isString := slotField&1 != 0
	line, err := i.console.ReadLine()
	if err != nil {
		return err
	}
	var v Value
	if isString {
		v = Str(line)
	} else {
		n, perr := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if perr != nil {
			n = 0
		}
		v = Num(n)
	}
	return i.store.StoreScalar(slotField, isString, v)
}

// callLine implements the LINE graphics statement: a full line
// (x1,y1,x2,y2[,color]), a box when the fifth argument is the string
// "B" or "BF" (filled), and the shorthand (x2,y2[,color]) continuing
// from the graphics host's current pen (spec.md §4.3/§4.4). A numeric
// color argument selects a palette entry before drawing.
func (i *Instance) callLine(argc int, shorthand bool) error {
	args, err := i.popArgs(argc)
	if err != nil {
		return err
	}
	if shorthand {
		x2, err := argInt(args, 0)
		if err != nil {
			return err
		}
		y2, err := argInt(args, 1)
		if err != nil {
			return err
		}
		if argc >= 3 {
			p, err := argInt(args, 2)
			if err != nil {
				return err
			}
			i.graphics.ColorPalette(ClampPaletteIndex(p))
		}
		i.graphics.LineTo(x2, y2)
		i.penX, i.penY = x2, y2
		return nil
	}
	x1, err := argInt(args, 0)
	if err != nil {
		return err
	}
	y1, err := argInt(args, 1)
	if err != nil {
		return err
	}
	x2, err := argInt(args, 2)
	if err != nil {
		return err
	}
	y2, err := argInt(args, 3)
	if err != nil {
		return err
	}
	if argc >= 5 && args[4].IsString() {
		mode, err := argStr(args, 4)
		if err != nil {
			return err
		}
		fill := strings.EqualFold(mode, "BF")
		i.graphics.Box(x1, y1, x2, y2, fill)
	} else {
		if argc >= 5 {
			p, err := argInt(args, 4)
			if err != nil {
				return err
			}
			i.graphics.ColorPalette(ClampPaletteIndex(p))
		}
		i.graphics.Line(x1, y1, x2, y2)
	}
	i.penX, i.penY = x2, y2
	return nil
}

// dispatchFn evaluates every value-producing and void built-in other
// than INPUT and LINE (handled separately above).
func (i *Instance) dispatchFn(fn FnID, args []Value) (Value, error) {
	switch fn {
	case FnAbs:
		n, err := argNum(args, 0)
		return Num(math.Abs(n)), err
	case FnInt:
		n, err := argNum(args, 0)
		return Num(math.Floor(n)), err
	case FnSgn:
		n, err := argNum(args, 0)
		if err != nil {
			return Value{}, err
		}
		switch {
		case n > 0:
			return Num(1), nil
		case n < 0:
			return Num(-1), nil
		}
		return Num(0), nil
	case FnSqr:
		n, err := argNum(args, 0)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Sqrt(n)), nil
	case FnSin:
		n, err := argNum(args, 0)
		return Num(math.Sin(n)), err
	case FnCos:
		n, err := argNum(args, 0)
		return Num(math.Cos(n)), err
	case FnTan:
		n, err := argNum(args, 0)
		return Num(math.Tan(n)), err
	case FnAtn:
		n, err := argNum(args, 0)
		return Num(math.Atan(n)), err
	case FnLog:
		n, err := argNum(args, 0)
		if err != nil {
			return Value{}, err
		}
		if n <= 0 {
			return Value{}, &Error{Kind: DomainError}
		}
		return Num(math.Log(n)), nil
	case FnExp:
		n, err := argNum(args, 0)
		return Num(math.Exp(n)), err
	case FnPi:
		return Num(math.Pi), nil
	case FnRad:
		n, err := argNum(args, 0)
		return Num(n * math.Pi / 180), err
	case FnDeg:
		n, err := argNum(args, 0)
		return Num(n * 180 / math.Pi), err
	case FnMin:
		a, err := argNum(args, 0)
		if err != nil {
			return Value{}, err
		}
		b, err := argNum(args, 1)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Min(a, b)), nil
	case FnMax:
		a, err := argNum(args, 0)
		if err != nil {
			return Value{}, err
		}
		b, err := argNum(args, 1)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Max(a, b)), nil
	case FnClamp:
		n, err := argNum(args, 0)
		if err != nil {
			return Value{}, err
		}
		lo, err := argNum(args, 1)
		if err != nil {
			return Value{}, err
		}
		hi, err := argNum(args, 2)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Min(math.Max(n, lo), hi)), nil
	case FnModFn:
		a, err := argNum(args, 0)
		if err != nil {
			return Value{}, err
		}
		b, err := argNum(args, 1)
		if err != nil {
			return Value{}, err
		}
		if b == 0 {
			return Value{}, errDivByZero()
		}
		return Num(mod(a, b)), nil

	case FnRnd:
		return Num(i.rng.Float64()), nil
	case FnRndI:
		n, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			n = 0
		}
		return Num(float64(i.rng.IntN(n + 1))), nil
	case FnRandomize:
		if len(args) > 0 {
			seed, err := argInt(args, 0)
			if err != nil {
				return Value{}, err
			}
			i.seedRNG(int64(seed))
		} else {
			i.seedRNG(int64(i.insCount) ^ i.startTime.UnixNano())
		}
		return Value{}, nil
	case FnTimer:
		return Num(timeSince(i.startTime)), nil

	case FnStrDollar:
		n, err := argNum(args, 0)
		return Str(FormatNumber(n)), err
	case FnVal:
		s, err := argStr(args, 0)
		if err != nil {
			return Value{}, err
		}
		return Num(parseNumericPrefix(s)), nil
	case FnLen:
		s, err := argStr(args, 0)
		return Num(float64(len(s))), err
	case FnChrDollar:
		n, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		if n < 0 || n > 255 {
			return Value{}, &Error{Kind: DomainError}
		}
		return Str(string(rune(n))), nil
	case FnAsc:
		s, err := argStr(args, 0)
		if err != nil {
			return Value{}, err
		}
		if s == "" {
			return Num(0), nil
		}
		return Num(float64(s[0])), nil
	case FnLeftDollar:
		s, err := argStr(args, 0)
		if err != nil {
			return Value{}, err
		}
		n, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		return Str(leftN(s, n)), nil
	case FnRightDollar:
		s, err := argStr(args, 0)
		if err != nil {
			return Value{}, err
		}
		n, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		return Str(rightN(s, n)), nil
	case FnMidDollar:
		s, err := argStr(args, 0)
		if err != nil {
			return Value{}, err
		}
		p, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		length := -1
		if len(args) > 2 {
			length, err = argInt(args, 2)
			if err != nil {
				return Value{}, err
			}
		}
		return Str(midN(s, p, length)), nil
	case FnSpc:
		n, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		i.print.spc(i.console, n)
		return Value{}, nil
	case FnTab:
		n, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		i.print.tab(i.console, n)
		return Value{}, nil
	case FnInstr:
		// 2-arg form: INSTR(haystack, needle); 3-arg form:
		// INSTR(start, haystack, needle), start 1-based.
		start := 1
		hIdx, nIdx := 0, 1
		if len(args) > 2 {
			s, err := argInt(args, 0)
			if err != nil {
				return Value{}, err
			}
			start = s
			hIdx, nIdx = 1, 2
		}
		haystack, err := argStr(args, hIdx)
		if err != nil {
			return Value{}, err
		}
		needle, err := argStr(args, nIdx)
		if err != nil {
			return Value{}, err
		}
		return Num(float64(instrFrom(haystack, needle, start))), nil
	case FnStringDollar:
		n, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		ch, err := stringDollarChar(args, 1)
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			n = 0
		}
		return Str(strings.Repeat(ch, n)), nil

	case FnLocate:
		x, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		y, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		i.console.Locate(x, y)
		return Value{}, nil

	case FnScreen:
		w, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		h, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		i.graphics.EnsureScreen(w, h)
		return Value{}, nil
	case FnCls:
		i.graphics.Cls()
		return Value{}, nil
	case FnColor:
		if len(args) >= 3 {
			r, err := argInt(args, 0)
			if err != nil {
				return Value{}, err
			}
			g, err := argInt(args, 1)
			if err != nil {
				return Value{}, err
			}
			b, err := argInt(args, 2)
			if err != nil {
				return Value{}, err
			}
			i.graphics.ColorRGB(r, g, b)
		} else if len(args) == 1 {
			p, err := argInt(args, 0)
			if err != nil {
				return Value{}, err
			}
			i.graphics.ColorPalette(ClampPaletteIndex(p))
		}
		return Value{}, nil
	case FnColorHSV:
		h, err := argNum(args, 0)
		if err != nil {
			return Value{}, err
		}
		s, err := argNum(args, 1)
		if err != nil {
			return Value{}, err
		}
		v, err := argNum(args, 2)
		if err != nil {
			return Value{}, err
		}
		i.graphics.ColorHSV(h, s, v)
		return Value{}, nil
	case FnPset:
		x, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		y, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		i.graphics.PSet(x, y)
		i.penX, i.penY = x, y
		return Value{}, nil
	case FnCircle:
		x, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		y, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		r, err := argInt(args, 2)
		if err != nil {
			return Value{}, err
		}
		i.graphics.Circle(x, y, r)
		return Value{}, nil
	case FnBox:
		x1, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		y1, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		x2, err := argInt(args, 2)
		if err != nil {
			return Value{}, err
		}
		y2, err := argInt(args, 3)
		if err != nil {
			return Value{}, err
		}
		fill := false
		if len(args) > 4 {
			t, err := args[4].Truthy()
			if err != nil {
				return Value{}, err
			}
			fill = t
		}
		i.graphics.Box(x1, y1, x2, y2, fill)
		return Value{}, nil
	case FnPaint:
		x, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		y, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		i.graphics.Paint(x, y)
		return Value{}, nil
	case FnFlush:
		i.graphics.Flush()
		return Value{}, nil
	case FnSaveImage:
		path, err := argStr(args, 0)
		if err != nil {
			return Value{}, err
		}
		return Value{}, i.graphics.Save(path)
	case FnSleep:
		n, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		i.graphics.SleepMS(n)
		return Value{}, nil
	case FnPoint:
		x, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		y, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		return Bool(i.graphics.PointNonBlack(x, y)), nil
	case FnGLocate:
		x, err := argInt(args, 0)
		if err != nil {
			return Value{}, err
		}
		y, err := argInt(args, 1)
		if err != nil {
			return Value{}, err
		}
		i.graphics.TextLocate(x, y)
		return Value{}, nil
	case FnGPrint:
		s, err := argStr(args, 0)
		if err != nil {
			return Value{}, err
		}
		i.graphics.TextPrint(s)
		return Value{}, nil
	}
	return Value{}, &Error{Kind: UndefdFunction}
}

func leftN(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if n > len(r) {
		n = len(r)
	}
	return string(r[:n])
}

func rightN(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if n > len(r) {
		n = len(r)
	}
	return string(r[len(r)-n:])
}

// midN implements MID$(s, p, [length]): p is 1-based; a negative or
// omitted length means "to the end of the string".
func midN(s string, p, length int) string {
	r := []rune(s)
	start := p - 1
	if start < 0 {
		start = 0
	}
	if start >= len(r) {
		return ""
	}
	end := len(r)
	if length >= 0 && start+length < end {
		end = start + length
	}
	return string(r[start:end])
}

// instrFrom finds needle in haystack starting at 1-based start,
// returning a 1-based match position or 0 if not found.
func instrFrom(haystack, needle string, start int) int {
	r := []rune(haystack)
	if start < 1 {
		start = 1
	}
	if start-1 > len(r) {
		return 0
	}
	n := []rune(needle)
	for i := start - 1; i+len(n) <= len(r); i++ {
		if string(r[i:i+len(n)]) == needle {
			return i + 1
		}
	}
	return 0
}

// stringDollarChar resolves STRING$(n, c)'s second argument: a numeric
// c names a character code (as CHR$ would), a string c contributes its
// first rune.
func stringDollarChar(args []Value, k int) (string, error) {
	if k >= len(args) {
		return "", &Error{Kind: ArgCountMismatch}
	}
	v := args[k]
	if v.IsString() {
		s := v.StrVal()
		if s == "" {
			return "", nil
		}
		return string([]rune(s)[0]), nil
	}
	return string(rune(int(v.NumVal()))), nil
}

// parseNumericPrefix parses the longest valid numeric prefix of s,
// BASIC VAL semantics: "  -12.5abc" -> -12.5, "abc" -> 0.
func parseNumericPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot := false, false
	for idx, c := range s {
		switch {
		case c == '+' || c == '-':
			if idx != 0 {
				goto done
			}
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot:
			seenDot = true
		default:
			goto done
		}
		end = idx + 1
	}
done:
	if !seenDigit {
		return 0
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return n
}
