package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rocket/internal/ast"
	"rocket/internal/lexer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := Parse(tokens)
	require.NoError(t, err)
	return prog
}

func TestParseLetStatement(t *testing.T) {
	prog := parse(t, `let x = 5;`)
	require.Len(t, prog.Statements, 1)
	stmt, ok := prog.Statements[0].(*ast.LetStatement)
	require.True(t, ok)
	assert.Equal(t, "x", stmt.Name)
	lit, ok := stmt.Value.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(5), lit.Value)
}

func TestParseFnDeclAndCall(t *testing.T) {
	prog := parse(t, `fn add(a, b) { return add(a, b); } add(1, 2);`)
	require.Len(t, prog.Statements, 2)
	fn, ok := prog.Statements[0].(*ast.FnDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, []string{"a", "b"}, fn.Params)

	exprStmt, ok := prog.Statements[1].(*ast.ExprStatement)
	require.True(t, ok)
	call, ok := exprStmt.Expr.(*ast.CallExpr)
	require.True(t, ok)
	assert.Len(t, call.Args, 2)
}

func TestParseIfElse(t *testing.T) {
	prog := parse(t, `if (true) { let x = 1; } else if (false) { let y = 2; } else { let z = 3; }`)
	stmt := prog.Statements[0].(*ast.IfStatement)
	require.NotNil(t, stmt.Then)
	elseIf, ok := stmt.Else.(*ast.IfStatement)
	require.True(t, ok)
	_, ok = elseIf.Else.(*ast.BlockStatement)
	require.True(t, ok)
}

func TestParseWhile(t *testing.T) {
	prog := parse(t, `while (x) { continue; }`)
	stmt, ok := prog.Statements[0].(*ast.WhileStatement)
	require.True(t, ok)
	require.Len(t, stmt.Body.Statements, 1)
	_, ok = stmt.Body.Statements[0].(*ast.ContinueStatement)
	require.True(t, ok)
}

func TestParseCStyleFor(t *testing.T) {
	// Rocket has no bare-name assignment statement (§3/§4.4); a loop counter
	// must live inside a container and be advanced via index assignment.
	prog := parse(t, `for (let i = [0]; lt(i[0], 10); i[0] = add(i[0], 1)) { print(i[0]); }`)
	stmt, ok := prog.Statements[0].(*ast.CForStatement)
	require.True(t, ok)
	require.NotNil(t, stmt.Init)
	require.NotNil(t, stmt.Cond)
	require.NotNil(t, stmt.Post)
	_, ok = stmt.Post.(*ast.IndexAssignExpr)
	require.True(t, ok)
}

func TestParseForOf(t *testing.T) {
	prog := parse(t, `for (let item of items) { print(item); }`)
	stmt, ok := prog.Statements[0].(*ast.ForOfStatement)
	require.True(t, ok)
	assert.Equal(t, "item", stmt.VarName)
}

func TestParseIndexAssignment(t *testing.T) {
	prog := parse(t, `a[1] = true;`)
	exprStmt := prog.Statements[0].(*ast.ExprStatement)
	assign, ok := exprStmt.Expr.(*ast.IndexAssignExpr)
	require.True(t, ok)
	boolLit, ok := assign.Value.(*ast.BoolLit)
	require.True(t, ok)
	assert.True(t, boolLit.Value)
}

func TestParseAttrAssignment(t *testing.T) {
	prog := parse(t, `d.name = "rocket";`)
	exprStmt := prog.Statements[0].(*ast.ExprStatement)
	assign, ok := exprStmt.Expr.(*ast.AttrAssignExpr)
	require.True(t, ok)
	assert.Equal(t, "name", assign.Name)
}

func TestParseListAndDictLiterals(t *testing.T) {
	prog := parse(t, `let xs = [1, 2, 3]; let d = {"a": 1, "b": 2};`)
	list := prog.Statements[0].(*ast.LetStatement).Value.(*ast.ListLit)
	assert.Len(t, list.Elems, 3)

	dict := prog.Statements[1].(*ast.LetStatement).Value.(*ast.DictLit)
	assert.Len(t, dict.Pairs, 2)
}

func TestParseNestedIndexAndAttrChain(t *testing.T) {
	prog := parse(t, `x[0].y[1];`)
	exprStmt := prog.Statements[0].(*ast.ExprStatement)
	_, ok := exprStmt.Expr.(*ast.IndexExpr)
	require.True(t, ok)
}

func TestStringRoundTripsThroughReparse(t *testing.T) {
	src := `fn add(a, b) { return a; }`
	prog := parse(t, src)
	printed := prog.String()

	tokens, err := lexer.Lex(printed)
	require.NoError(t, err)
	reparsed, err := Parse(tokens)
	require.NoError(t, err)
	assert.Equal(t, prog.String(), reparsed.String())
}

func TestMissingSemicolonIsParseError(t *testing.T) {
	tokens, err := lexer.Lex(`let x = 5`)
	require.NoError(t, err)
	_, err = Parse(tokens)
	require.Error(t, err)
	var parseErr *Error
	require.ErrorAs(t, err, &parseErr)
}

func TestUnbalancedBraceIsParseError(t *testing.T) {
	tokens, err := lexer.Lex(`fn f() { return 1;`)
	require.NoError(t, err)
	_, err = Parse(tokens)
	require.Error(t, err)
}
