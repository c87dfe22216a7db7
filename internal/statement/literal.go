package statement

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Render returns the statement with every placeholder replaced by a quoted
// literal. It is for display (dry runs, debug logs) and is never executed.
func (s Statement) Render() string {
	if len(s.Args) == 0 {
		return s.template
	}
	var b strings.Builder
	b.Grow(len(s.template) + 16*len(s.Args))
	arg := 0
	inQuote := false
	for i := 0; i < len(s.template); i++ {
		ch := s.template[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
		case ch == '?' && !inQuote && arg < len(s.Args):
			b.WriteString(Literal(s.Args[arg]))
			arg++
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// String implements fmt.Stringer with the rendered form.
func (s Statement) String() string { return s.Render() }

// Literal renders v as an SQL literal. Strings are single-quoted with
// embedded quotes doubled.
func Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return quote(x)
	case []byte:
		return quote(string(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		return quote(x.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return quote(x.String())
	}
	return quote(fmt.Sprint(v))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
