package querybuilder

// Condition is one predicate of a WHERE clause.
type Condition interface {
	writeSQL(w *sqlWriter)
}

type boundValue struct {
	value any
}

func (v boundValue) writeSQL(w *sqlWriter) {
	w.bind(v.value)
}

type comparison struct {
	column string
	op     string
	value  any
}

func Eq(column string, value any) Condition {
	return comparison{column: column, op: "=", value: value}
}

// Cmp compares column with value using op, one of =, <>, <, <=, >, >=.
func Cmp(column, op string, value any) Condition {
	return comparison{column: column, op: op, value: value}
}

func (c comparison) writeSQL(w *sqlWriter) {
	w.WriteString(c.column)
	w.WriteByte(' ')
	w.WriteString(c.op)
	w.WriteByte(' ')
	w.bind(c.value)
}

type membership struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return membership{column: column, values: values}
}

// InInt64 is In for id lists.
func InInt64(column string, ids []int64) Condition {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return membership{column: column, values: values}
}

// An empty list renders as 1=0 so the statement stays valid and matches nothing.
func (c membership) writeSQL(w *sqlWriter) {
	if len(c.values) == 0 {
		w.WriteString("1=0")
		return
	}
	w.WriteString(c.column)
	w.WriteString(" IN (")
	for i, v := range c.values {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(v)
	}
	w.WriteByte(')')
}

type nullCheck struct {
	column string
	not    bool
}

func IsNull(column string) Condition {
	return nullCheck{column: column}
}

func IsNotNull(column string) Condition {
	return nullCheck{column: column, not: true}
}

func (c nullCheck) writeSQL(w *sqlWriter) {
	w.WriteString(c.column)
	if c.not {
		w.WriteString(" IS NOT NULL")
	} else {
		w.WriteString(" IS NULL")
	}
}

type rawSQL struct {
	sql  string
	args []any
}

// Expr embeds raw SQL; each ? binds the next arg. A ? beyond the last arg is
// kept as written.
func Expr(sql string, args ...any) Condition {
	return rawSQL{sql: sql, args: args}
}

func (r rawSQL) writeSQL(w *sqlWriter) {
	next := 0
	for i := 0; i < len(r.sql); i++ {
		if r.sql[i] == '?' && next < len(r.args) {
			w.bind(r.args[next])
			next++
			continue
		}
		w.WriteByte(r.sql[i])
	}
}

type group struct {
	joiner string
	parts  []Condition
}

// Or joins conditions with OR inside parentheses.
func Or(conditions ...Condition) Condition {
	return group{joiner: " OR ", parts: conditions}
}

// And groups conditions with AND inside parentheses, for nesting under Or.
func And(conditions ...Condition) Condition {
	return group{joiner: " AND ", parts: conditions}
}

func (g group) writeSQL(w *sqlWriter) {
	if len(g.parts) == 0 {
		w.WriteString("1=1")
		return
	}
	w.WriteByte('(')
	for i, part := range g.parts {
		if i > 0 {
			w.WriteString(g.joiner)
		}
		part.writeSQL(w)
	}
	w.WriteByte(')')
}
