// Package sink implements the Execution Sink: the single choke point
// through which every generated statement either runs against the live
// connection or is written to a script file, per the two mutually
// exclusive modes of §4.7.
package sink

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tablepart/internal/core"
	"tablepart/internal/log"
)

// Sink is the interface the orchestrator drives. Execute runs or
// records op depending on the implementation's mode; op.Override marks
// a statement that must always hit the live connection.
type Sink interface {
	Execute(ctx context.Context, op core.Operation) error
	Close() error
}

// LiveSink executes every statement against db immediately.
type LiveSink struct {
	db *sql.DB
}

// NewLiveSink builds a Sink that always executes against db.
func NewLiveSink(db *sql.DB) *LiveSink {
	return &LiveSink{db: db}
}

func (s *LiveSink) Execute(ctx context.Context, op core.Operation) error {
	logRisk(op)
	if _, err := s.db.ExecContext(ctx, op.SQL, op.Args...); err != nil {
		return core.WrapError(core.ErrExecutionError, err, "executing %q", op.SQL)
	}
	return nil
}

func (s *LiveSink) Close() error { return nil }

// ScriptSink writes formatted statement text to w; statements marked
// Override (the ledger's tracking-table statements) still execute
// against db.
type ScriptSink struct {
	db *sql.DB
	w  io.Writer
}

// NewScriptSink builds a Sink that writes to w, executing only
// Override operations against db.
func NewScriptSink(db *sql.DB, w io.Writer) *ScriptSink {
	return &ScriptSink{db: db, w: w}
}

func (s *ScriptSink) Execute(ctx context.Context, op core.Operation) error {
	if op.Override {
		logRisk(op)
		if _, err := s.db.ExecContext(ctx, op.SQL, op.Args...); err != nil {
			return core.WrapError(core.ErrExecutionError, err, "executing %q", op.SQL)
		}
		return nil
	}

	text, err := mogrify(op.SQL, op.Args)
	if err != nil {
		log.Warnf("could not bind parameters for script output, degrading to raw SQL: %v", err)
		text = op.SQL + "\n-- VALUES: " + valuesAnnotation(op.Args)
	} else {
		text = formatKeywords(text)
	}

	if _, err := io.WriteString(s.w, text+"\n\n"); err != nil {
		return core.WrapError(core.ErrIOError, err, "writing script output")
	}
	return nil
}

func (s *ScriptSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return core.WrapError(core.ErrIOError, c.Close(), "closing script output")
	}
	return nil
}

func logRisk(op core.Operation) {
	if op.Risk == core.RiskCritical {
		log.Warnf("about to execute a critical-risk statement: %s", op.SQL)
	}
}

// mogrify substitutes $1, $2, … placeholders in sqlText with literal
// text for each of args, the way the execution path's live binding
// would, so script mode can emit directly replayable SQL.
func mogrify(sqlText string, args []any) (string, error) {
	if len(args) == 0 {
		return sqlText, nil
	}
	result := sqlText
	for i, a := range args {
		placeholder := fmt.Sprintf("$%d", i+1)
		lit, err := literalFor(a)
		if err != nil {
			return "", err
		}
		if !strings.Contains(result, placeholder) {
			return "", fmt.Errorf("placeholder %s not present in statement", placeholder)
		}
		result = strings.ReplaceAll(result, placeholder, lit)
	}
	return result, nil
}

func literalFor(a any) (string, error) {
	switch v := a.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case float64:
		return fmt.Sprintf("%v", v), nil
	case decimal.Decimal:
		return v.String(), nil
	case time.Time:
		return "'" + v.UTC().Format(time.RFC3339) + "'", nil
	default:
		return "", fmt.Errorf("unsupported literal type %T", a)
	}
}

func valuesAnnotation(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

var keywordPattern = regexp.MustCompile(`(?i)\b(select|insert|into|values|from|where|create|table|partition|by|range|list|default|for|of|alter|rename|to|lock|begin|commit|drop|if|not|exists|truncate|null)\b`)

// formatKeywords upper-cases SQL keywords, the hand-rolled equivalent
// of the original's sqlparse-based reindent/upper-case pass — no
// ecosystem SQL formatter in the retrieved pack reindents arbitrary SQL
// the way sqlparse does, so this is deliberately minimal.
func formatKeywords(sqlText string) string {
	return keywordPattern.ReplaceAllStringFunc(sqlText, strings.ToUpper)
}
