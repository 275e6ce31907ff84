package vm

// FnID identifies a built-in function in the fixed dispatch table
// (spec.md §2 "Function registry", §4.4 "Built-in functions").
type FnID int

// Built-in function IDs. INPUT is dispatched like every other
// built-in, but its B operand carries the target slot instead of an
// argument count (spec.md §4.3, §9 "INPUT as a special CALLFN").
const (
	FnAbs FnID = iota
	FnInt
	FnSgn
	FnSqr
	FnSin
	FnCos
	FnTan
	FnAtn
	FnLog
	FnExp
	FnPi
	FnRad
	FnDeg
	FnMin
	FnMax
	FnClamp
	FnModFn

	FnRnd
	FnRndI
	FnRandomize
	FnTimer

	FnStrDollar
	FnVal
	FnLen
	FnChrDollar
	FnAsc
	FnLeftDollar
	FnRightDollar
	FnMidDollar
	FnSpc
	FnTab
	FnInstr
	FnStringDollar

	FnInput
	FnLocate

	FnScreen
	FnCls
	FnColor
	FnPset
	FnLine
	FnCircle
	FnBox
	FnPaint
	FnFlush
	FnColorHSV
	FnSaveImage
	FnSleep
	FnPoint
	FnGLocate
	FnGPrint
)

// FnNames maps a built-in name (as written in source, upper-cased,
// with trailing $ intact) to its FnID. Zero-argument functions
// callable bare (no parens) are listed in FnBareOK.
var FnNames = map[string]FnID{
	"ABS": FnAbs, "INT": FnInt, "SGN": FnSgn, "SQR": FnSqr,
	"SIN": FnSin, "COS": FnCos, "TAN": FnTan, "ATN": FnAtn,
	"LOG": FnLog, "EXP": FnExp, "PI": FnPi, "RAD": FnRad, "DEG": FnDeg,
	"MIN": FnMin, "MAX": FnMax, "CLAMP": FnClamp, "MOD": FnModFn,

	"RND": FnRnd, "RNDI": FnRndI, "RANDOMIZE": FnRandomize, "TIMER": FnTimer,

	"STR$": FnStrDollar, "VAL": FnVal, "LEN": FnLen, "CHR$": FnChrDollar,
	"ASC": FnAsc, "LEFT$": FnLeftDollar, "RIGHT$": FnRightDollar,
	"MID$": FnMidDollar, "SPC": FnSpc, "TAB": FnTab, "INSTR": FnInstr,
	"STRING$": FnStringDollar,

	"INPUT": FnInput, "LOCATE": FnLocate,

	"SCREEN": FnScreen, "CLS": FnCls, "COLOR": FnColor, "PSET": FnPset,
	"LINE": FnLine, "CIRCLE": FnCircle, "BOX": FnBox, "PAINT": FnPaint,
	"FLUSH": FnFlush, "COLORHSV": FnColorHSV, "SAVEIMAGE": FnSaveImage,
	"SLEEP": FnSleep, "POINT": FnPoint, "GLOCATE": FnGLocate, "GPRINT": FnGPrint,
}

// FnBareOK is the set of functions that may be written without
// parentheses when called with zero arguments (spec.md §4.4).
var FnBareOK = map[FnID]bool{
	FnRnd:   true,
	FnPi:    true,
	FnTimer: true,
}

// FnVoid is the set of functions that push no result value
// (graphics, RANDOMIZE, LOCATE, SLEEP, INPUT).
var FnVoid = map[FnID]bool{
	FnRandomize: true, FnInput: true, FnLocate: true,
	FnSpc: true, FnTab: true,
	FnScreen: true, FnCls: true, FnColor: true, FnPset: true,
	FnLine: true, FnCircle: true, FnBox: true, FnPaint: true,
	FnFlush: true, FnColorHSV: true, FnSaveImage: true, FnSleep: true,
	FnGLocate: true, FnGPrint: true,
}
