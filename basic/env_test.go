package basic_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrobas/rbasic/basic"
)

// fakeConsole is a vm.ConsoleHost recording output and replaying a
// canned sequence of INPUT lines, used in place of internal/console
// so these end-to-end tests never touch stdin/stdout.
type fakeConsole struct {
	out   strings.Builder
	lines []string
}

var errNoMoreInput = errors.New("fakeConsole: no more input lines")

func (f *fakeConsole) Write(s string) { f.out.WriteString(s) }
func (f *fakeConsole) Locate(int, int) {}
func (f *fakeConsole) ReadLine() (string, error) {
	if len(f.lines) == 0 {
		return "", errNoMoreInput
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func runSource(t *testing.T, src map[int]string, input ...string) string {
	t.Helper()
	fc := &fakeConsole{lines: input}
	env := basic.New(basic.WithConsole(fc))
	env.Source = src
	_, err := env.Run()
	require.NoError(t, err)
	return fc.out.String()
}

func TestAssignmentAndPrint(t *testing.T) {
	out := runSource(t, map[int]string{
		10: `A = 3 : B = 4`,
		20: `PRINT A + B`,
	})
	assert.Equal(t, "7\n", out)
}

func TestMixedStringNumberPrintSeparators(t *testing.T) {
	out := runSource(t, map[int]string{
		10: `A$="HI" : N=7`,
		20: `PRINT A$; N`,
		30: `PRINT A$, N`,
	})
	assert.Equal(t, "HI7\nHI            7\n", out)
}

func TestForNextSum(t *testing.T) {
	out := runSource(t, map[int]string{
		10: `S=0`,
		20: `FOR I=1 TO 5 : S=S+I : NEXT`,
		30: `PRINT S`,
	})
	assert.Equal(t, "15\n", out)
}

func TestGosubReturn(t *testing.T) {
	out := runSource(t, map[int]string{
		10:  `GOSUB 100`,
		20:  `PRINT "B"`,
		30:  `END`,
		100: `PRINT "A" : RETURN`,
	})
	assert.Equal(t, "A\nB\n", out)
}

func TestIfThenElseLineTargetsFail(t *testing.T) {
	out := runSource(t, map[int]string{
		10:  `INPUT S`,
		20:  `IF S >= 60 THEN 100 ELSE 200`,
		100: `PRINT "PASS" : END`,
		200: `PRINT "FAIL" : END`,
	}, "59")
	assert.Equal(t, "FAIL\n", out)
}

func TestIfThenElseLineTargetsPass(t *testing.T) {
	out := runSource(t, map[int]string{
		10:  `INPUT S`,
		20:  `IF S >= 60 THEN 100 ELSE 200`,
		100: `PRINT "PASS" : END`,
		200: `PRINT "FAIL" : END`,
	}, "60")
	assert.Equal(t, "PASS\n", out)
}

func TestDefFnUse(t *testing.T) {
	out := runSource(t, map[int]string{
		10: `DEF FN SQR2(X) = X*X`,
		20: `PRINT FN SQR2(6)`,
	})
	assert.Equal(t, "36\n", out)
}

func TestForZeroIterations(t *testing.T) {
	out := runSource(t, map[int]string{
		10: `N = 0`,
		20: `FOR I=1 TO 0 : N = N + 1 : NEXT`,
		30: `PRINT N`,
	})
	assert.Equal(t, "0\n", out)
}

func TestForDescendingStep(t *testing.T) {
	out := runSource(t, map[int]string{
		10: `S$=""`,
		20: `FOR I=5 TO 1 STEP -1 : S$ = S$ + STR$(I) : NEXT`,
		30: `PRINT S$`,
	})
	assert.Equal(t, "54321\n", out)
}

func TestOnGotoOutOfRangeFallsThrough(t *testing.T) {
	out := runSource(t, map[int]string{
		10: `K = 9`,
		20: `ON K GOTO 100,200,300`,
		30: `PRINT "FELLTHROUGH"`,
		40: `END`,
		100: `PRINT "A" : END`,
		200: `PRINT "B" : END`,
		300: `PRINT "C" : END`,
	})
	assert.Equal(t, "FELLTHROUGH\n", out)
}

func TestDimSubscriptZeroValid(t *testing.T) {
	out := runSource(t, map[int]string{
		10: `DIM A(3)`,
		20: `A(0) = 42`,
		30: `PRINT A(0)`,
	})
	assert.Equal(t, "42\n", out)
}

func TestCarryStateAcrossRuns(t *testing.T) {
	fc := &fakeConsole{}
	env := basic.New(basic.WithConsole(fc))
	env.Source = map[int]string{10: `X = X + 1`, 20: `PRINT X`}
	_, err := env.RunCarryingState()
	require.NoError(t, err)
	_, err = env.RunCarryingState()
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", fc.out.String())
}

func TestLoadSaveRoundTrip(t *testing.T) {
	src, err := basic.Load(strings.NewReader("10 PRINT 1\n20 PRINT 2\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, src.Lines())

	var sb strings.Builder
	require.NoError(t, basic.Save(&sb, src))
	assert.Equal(t, "10 PRINT 1\n20 PRINT 2\n", sb.String())
}

func TestSetLineBlankDeletes(t *testing.T) {
	src := basic.Source{10: "PRINT 1"}
	src.SetLine(10, "   ")
	_, ok := src[10]
	assert.False(t, ok)
}
