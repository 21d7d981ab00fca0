// Package sqlgen renders an ordered MigrationOperation stream into dialect-correct SQL
// statements (spec.md §4.5, §4.6). The base generator and its quoting rules are
// grounded on the teacher's internal/utils/qouting.go (its escaping rule is adapted
// into QuoteIdentifier below) and internal/sync/schema_ddl_create.go /
// schema_ddl_alter.go's dialect-dispatched DDL string building.
package sqlgen

import (
	"fmt"
	"strings"
)

// Statement is one rendered SQL statement, with its (possibly empty) bind parameters.
// Most statements produced by this generator have zero parameters (spec.md §6).
type Statement struct {
	Text       string
	Parameters []any
}

// builder is a local, non-shared indented string builder: a fresh instance is created
// per GenerateSql call (spec.md §4.5, §4.9 "SQL builder" design note). It is not safe
// for concurrent use on itself.
type builder struct {
	stmts  []Statement
	indent int
}

func newBuilder() *builder {
	return &builder{}
}

func (b *builder) emit(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if b.indent > 0 {
		text = strings.Repeat("  ", b.indent) + text
	}
	b.stmts = append(b.stmts, Statement{Text: text})
}

func (b *builder) statements() []Statement {
	return b.stmts
}

// Indent and Dedent adjust the indentation IndentedLines applies, for nesting a
// multi-line clause (e.g. CREATE TABLE's column list) inside an emitted statement.
func (b *builder) Indent() { b.indent++ }

func (b *builder) Dedent() {
	if b.indent > 0 {
		b.indent--
	}
}

// IndentedLines prefixes each line with the builder's current indent level.
func (b *builder) IndentedLines(lines []string) []string {
	if b.indent == 0 {
		return lines
	}
	prefix := strings.Repeat("  ", b.indent)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = prefix + l
	}
	return out
}

// QuoteIdentifier delimits an identifier per dialect. The base rule is double quotes
// with "" escaping; dialects override (e.g. SQL-Server-like square brackets with ]]
// escaping, MySQL-like backticks with `` escaping).
func QuoteIdentifier(name string, open, close byte, escapedClose string) string {
	escaped := strings.ReplaceAll(name, string(close), escapedClose)
	return fmt.Sprintf("%c%s%c", open, escaped, close)
}

// QuoteDefaultIdentifier applies the dialect-neutral default: double quotes, ""
// escaping.
func QuoteDefaultIdentifier(name string) string {
	return QuoteIdentifier(name, '"', '"', `""`)
}

// QuoteStringLiteral delimits a string literal with single quotes and '' escaping,
// per spec.md §4.5 — uniform across every dialect.
func QuoteStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
