// Package repl is an interactive read-eval-print loop for Rocket, run when
// the CLI is invoked with no source file.
package repl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"rocket/internal/evaluator"
	"rocket/internal/lexer"
	"rocket/internal/object"
	"rocket/internal/parser"
)

const historyFileName = ".rocket_history"

// Run starts the loop, reading statements from stdin until EOF or a `:quit`
// command. Each accepted input is lexed, parsed, and evaluated against one
// persistent global environment, so bindings from earlier lines stay live.
func Run() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(os.TempDir(), historyFileName)
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	env := evaluator.NewGlobalEnv()

	fmt.Println("rocket interactive shell. Type :help for commands, :quit to exit.")
	var buf strings.Builder
	for {
		prompt := "rocket> "
		if buf.Len() > 0 {
			prompt = "...... > "
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			break
		}

		if buf.Len() == 0 {
			switch strings.TrimSpace(input) {
			case ":quit", ":q":
				return persistHistory(line, historyPath)
			case ":help":
				printHelp()
				continue
			case ":env":
				printEnv(env)
				continue
			case ":clear":
				env = evaluator.NewGlobalEnv()
				fmt.Println("environment cleared")
				continue
			}
		}

		line.AppendHistory(input)
		buf.WriteString(input)
		buf.WriteString("\n")

		src := buf.String()
		if needsMoreInput(src) {
			continue
		}
		buf.Reset()

		evalSource(src, env)
	}
	return persistHistory(line, historyPath)
}

func evalSource(src string, env *object.Environment) {
	tokens, err := lexer.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	result, err := evaluator.Run(prog, env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if result != nil {
		if _, isNull := result.(*object.Null); !isNull {
			fmt.Println(result.Inspect())
		}
	}
}

// needsMoreInput reports whether src has unbalanced braces, brackets, or
// parens, so the loop keeps reading lines before evaluating.
func needsMoreInput(src string) bool {
	depth := 0
	inString := false
	escaped := false
	for _, ch := range src {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		}
	}
	return depth > 0
}

func printHelp() {
	fmt.Println(`Commands:
  :help    show this message
  :env     list names bound in the global environment
  :clear   reset the global environment
  :quit    exit the shell`)
}

func printEnv(env *object.Environment) {
	names := env.Global().Names()
	for _, n := range names {
		fmt.Println(n)
	}
}

func persistHistory(line *liner.State, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	_, err = line.WriteHistory(f)
	return err
}
