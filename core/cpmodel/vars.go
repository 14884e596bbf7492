package cpmodel

// Domain is a closed integer range.
type Domain struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Contains reports whether v lies in the domain.
func (d Domain) Contains(v int64) bool { return v >= d.Min && v <= d.Max }

// IntVar is an integer decision variable.
type IntVar struct {
	b     *Builder
	index int
}

// Index returns the variable index in the model.
func (v IntVar) Index() int { return v.index }

// WithName attaches a debug name to the variable.
func (v IntVar) WithName(name string) IntVar {
	v.b.names[v.index] = name
	return v
}

func (v IntVar) addTo(e *LinearExpr, coeff int64) {
	e.terms = append(e.terms, Term{Var: v.index, Coeff: coeff})
}

// Literal is a Boolean variable or its negation, as stored in a Model.
type Literal struct {
	Var     int  `json:"var"`
	Negated bool `json:"negated,omitempty"`
}

// Not returns the negated literal.
func (l Literal) Not() Literal { return Literal{Var: l.Var, Negated: !l.Negated} }

// BoolVar is a literal over a 0/1 variable.
type BoolVar struct {
	b       *Builder
	index   int
	negated bool
}

// Index returns the index of the underlying 0/1 variable.
func (v BoolVar) Index() int { return v.index }

// Not returns the negation of v.
func (v BoolVar) Not() BoolVar {
	return BoolVar{b: v.b, index: v.index, negated: !v.negated}
}

// Literal returns the model form of v.
func (v BoolVar) Literal() Literal { return Literal{Var: v.index, Negated: v.negated} }

// WithName attaches a debug name to the underlying variable.
func (v BoolVar) WithName(name string) BoolVar {
	v.b.names[v.index] = name
	return v
}

func (v BoolVar) addTo(e *LinearExpr, coeff int64) {
	if v.negated {
		// not(x) = 1 - x
		e.offset += coeff
		e.terms = append(e.terms, Term{Var: v.index, Coeff: -coeff})
		return
	}
	e.terms = append(e.terms, Term{Var: v.index, Coeff: coeff})
}

// Variable is implemented by IntVar and BoolVar.
type Variable interface {
	Index() int
}

// Interval is a fixed-size interval [start, start+size) on a start variable.
// When Optional is set it only exists while Presence is true.
type Interval struct {
	Start    int     `json:"start"`
	Size     int64   `json:"size"`
	Presence Literal `json:"presence"`
	Optional bool    `json:"optional"`
}

// IntervalVar is a handle on an interval of the builder.
type IntervalVar struct {
	index int
}

// Index returns the interval index in the model.
func (iv IntervalVar) Index() int { return iv.index }
