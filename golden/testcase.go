package golden

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputLanguage is the fence language of a test case's source program.
const InputLanguage = "c"

// AssertionType is the fence language of an assertion in a golden test case.
type AssertionType string

// Enumeration of assertion types.
const (
	// The s-expression dump of the type checked AST.
	AssertionAST AssertionType = "ast"

	// The textual IR of the program.
	AssertionIR AssertionType = "ir"

	// The emitted assembly of the program.
	AssertionAsm AssertionType = "asm"

	// The kind and message of the error compilation stops with: eg.
	// `type: invalid operands`.  The message only needs to be a prefix of the
	// actual message.
	AssertionCompileError AssertionType = "compile-error"

	// One warning message per line.
	AssertionWarnings AssertionType = "warnings"
)

var assertionTypes = map[string]AssertionType{
	"ast":           AssertionAST,
	"ir":            AssertionIR,
	"asm":           AssertionAsm,
	"compile-error": AssertionCompileError,
	"warnings":      AssertionWarnings,
}

// Assertion is a single expected output of a test case.
type Assertion struct {
	Type    AssertionType
	Content string

	// The line of the assertion's fence in the Markdown document.
	Line int
}

// TestCase is a golden test case extracted from Markdown: a heading of the form
// `Test: <name>` followed by one `c` fence and any number of assertion fences.
type TestCase struct {
	Name       string
	Input      string
	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and extracts all of its test
// cases in document order.
func ExtractTestCases(markdown string) ([]TestCase, error) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := extractText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}

			if current != nil {
				if err := validateTestCase(current); err != nil {
					return ast.WalkStop, err
				}

				testCases = append(testCases, *current)
			}

			current = &TestCase{Name: strings.TrimPrefix(heading, "Test: ")}
		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			line := lineNumber(n, source)

			// Unlabeled fences are commentary.
			if language == "" {
				return ast.WalkContinue, nil
			}

			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a test case", line, language)
			}

			content := strings.TrimRight(extractCodeBlock(n, source), "\n")

			if language == InputLanguage {
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in test '%s'", line, current.Name)
				}

				current.Input = content
				return ast.WalkContinue, nil
			}

			atype, ok := assertionTypes[language]
			if !ok {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, current.Name)
			}

			current.Assertions = append(current.Assertions, Assertion{Type: atype, Content: content, Line: line})
		}

		return ast.WalkContinue, nil
	})

	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := validateTestCase(current); err != nil {
			return nil, err
		}

		testCases = append(testCases, *current)
	}

	return testCases, nil
}

// validateTestCase ensures a test case has an input and at least one
// assertion.
func validateTestCase(tc *TestCase) error {
	if tc.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", tc.Name)
	}

	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}

	return nil
}

// -----------------------------------------------------------------------------

// extractText returns the plain text content of a Markdown node.
func extractText(node ast.Node, source []byte) string {
	var buf bytes.Buffer

	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}

		return ast.WalkContinue, nil
	})

	return buf.String()
}

// extractCodeBlock returns the content of a fenced code block.
func extractCodeBlock(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer

	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}

	return buf.String()
}

// lineNumber returns the one-based line number of the first line of a node.
func lineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}

	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte{'\n'}) + 1
}
