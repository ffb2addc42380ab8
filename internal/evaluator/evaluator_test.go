package evaluator

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rocket/internal/lexer"
	"rocket/internal/object"
	"rocket/internal/parser"
)

// runCapture lexes, parses, and evaluates src against a fresh global
// environment, capturing everything written to stdout by `print`.
func runCapture(t *testing.T, src string) (string, object.Object, error) {
	t.Helper()
	tokens, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := parser.Parse(tokens)
	require.NoError(t, err)

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	env := NewGlobalEnv()
	result, evalErr := Run(prog, env)

	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	io.Copy(&buf, r)

	return buf.String(), result, evalErr
}

func TestFibonacciRecursion(t *testing.T) {
	src := `
	fn fib(n) {
		if (lt(n, 2)) {
			return n;
		}
		return add(fib(sub(n, 1)), fib(sub(n, 2)));
	}
	print(fib(10));
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestListReplicationAndCountMethod(t *testing.T) {
	src := `
	let a = mul([false], 3);
	a[1] = true;
	print(a.count(true));
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestForOfOverString(t *testing.T) {
	src := `for (let c of "abc") { print(c); }`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", out)
}

func TestForOfOverDictYieldsKeys(t *testing.T) {
	src := `
	let d = {"x": 1, "y": 2};
	for (let k of d) { print(k); }
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "x\ny\n", out)
}

func TestTopLevelFunctionsAreHoisted(t *testing.T) {
	src := `
	print(g());
	fn g() { return 42; }
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestBareTopLevelBreakIsCtrlFlowError(t *testing.T) {
	_, _, err := runCapture(t, `break;`)
	require.Error(t, err)
	var re *object.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, object.CtrlFlowError, re.Kind)
	assert.Equal(t, 1, re.Pos.Line)
	assert.Equal(t, 1, re.Pos.Col)
}

func TestStrayBreakInsideFunctionReportsItsOwnPosition(t *testing.T) {
	src := "fn f() {\n" +
		"\tlet x = 1;\n" +
		"\tbreak;\n" +
		"}\n" +
		"f();\n"
	_, _, err := runCapture(t, src)
	require.Error(t, err)
	var re *object.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, object.CtrlFlowError, re.Kind)
	assert.Equal(t, 3, re.Pos.Line)
	assert.Equal(t, 2, re.Pos.Col)
}

func TestBlockScopingDoesNotLeak(t *testing.T) {
	src := `
	{
		let inner = 1;
	}
	print(inner);
	`
	_, _, err := runCapture(t, src)
	require.Error(t, err)
	var re *object.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, object.NameError, re.Kind)
}

func TestClosureObservesLaterContainerMutation(t *testing.T) {
	src := `
	let counter = [0];
	fn bump() { return add(counter[0], 1); }
	counter[0] = 5;
	print(bump());
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestForOfGivesEachIterationAFreshFrame(t *testing.T) {
	src := `
	let fns = [];
	for (let x of [1, 2, 3]) {
		fn capture() { return x; }
		fns.push(capture);
	}
	print(fns[0]());
	print(fns[1]());
	print(fns[2]());
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestEqNumericCoercionAndStructuralEquality(t *testing.T) {
	src := `
	print(eq(1, 1.0));
	print(eq([1, 2], [1, 2]));
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "true\ntrue\n", out)
}

func TestEqFunctionIsIdentity(t *testing.T) {
	src := `
	fn f1() { return 1; }
	fn f2() { return 1; }
	print(eq(f1, f1));
	print(eq(f1, f2));
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "true\nfalse\n", out)
}

func TestBuiltinArityErrorsOnUnderAndOverApplication(t *testing.T) {
	_, _, err := runCapture(t, `add(1);`)
	require.Error(t, err)
	var re *object.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, object.ArityError, re.Kind)

	_, _, err = runCapture(t, `add(1, 2, 3);`)
	require.Error(t, err)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, object.ArityError, re.Kind)
}

func TestVariadicPrintAcceptsAnyArgCount(t *testing.T) {
	out, _, err := runCapture(t, `print(); print(1, 2, 3);`)
	require.NoError(t, err)
	assert.Equal(t, "\n1 2 3\n", out)
}

func TestIntIntArithmeticStaysInt(t *testing.T) {
	src := `
	print(div(7, 2));
	print(mod(7, 2));
	print(mul([1], 3).length());
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "3\n1\n3\n", out)
}

func TestFloatOperandPromotesArithmeticToFloat(t *testing.T) {
	out, _, err := runCapture(t, `print(div(7, 2.0));`)
	require.NoError(t, err)
	assert.Equal(t, "3.5\n", out)
}

func TestAndOrDoNotShortCircuit(t *testing.T) {
	// Both operands are function-call arguments, so both are always
	// evaluated before and/or is applied; `print` inside each runs.
	src := `
	fn loud(label, v) { print(label); return v; }
	print(or(loud("left", true), loud("right", false)));
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "left\nright\ntrue\n", out)
}

func TestAttrDispatchPrefersDictKeyOverMethodTable(t *testing.T) {
	src := `
	let d = {"length": 99};
	print(d.length);
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "99\n", out)
}

func TestIndexOutOfRangeIsIndexError(t *testing.T) {
	_, _, err := runCapture(t, `let xs = [1, 2]; print(xs[5]);`)
	require.Error(t, err)
	var re *object.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, object.IndexError, re.Kind)
}

func TestNegativeListIndexingFromEnd(t *testing.T) {
	out, _, err := runCapture(t, `print([1, 2, 3][-1]);`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestMissingDictKeyIsKeyError(t *testing.T) {
	_, _, err := runCapture(t, `let d = {}; print(d["missing"]);`)
	require.Error(t, err)
	var re *object.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, object.KeyError, re.Kind)
}

func TestUnknownAttributeIsAttrError(t *testing.T) {
	_, _, err := runCapture(t, `print([1, 2].frobnicate());`)
	require.Error(t, err)
	var re *object.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, object.AttrError, re.Kind)
}

func TestRedeclaringNameInSameScopeIsNameError(t *testing.T) {
	_, _, err := runCapture(t, `let x = 1; let x = 2; print(x);`)
	require.Error(t, err)
	var re *object.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, object.NameError, re.Kind)
}

func TestRedeclaringNameInChildBlockShadowsOuterWithoutError(t *testing.T) {
	src := `
	let x = 1;
	{
		let x = 2;
		print(x);
	}
	print(x);
	`
	out, _, err := runCapture(t, src)
	require.NoError(t, err)
	assert.Equal(t, "2\n1\n", out)
}
