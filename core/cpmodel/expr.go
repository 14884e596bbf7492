package cpmodel

// LinearArgument is anything that can appear in a linear expression:
// IntVar, BoolVar and *LinearExpr.
type LinearArgument interface {
	addTo(e *LinearExpr, coeff int64)
}

// Term is one coefficient/variable pair of a normalized expression.
type Term struct {
	Var   int   `json:"var"`
	Coeff int64 `json:"coeff"`
}

// LinearExpr is a sum of weighted variables plus a constant offset.
type LinearExpr struct {
	terms  []Term
	offset int64
}

// NewLinearExpr returns an empty expression.
func NewLinearExpr() *LinearExpr { return &LinearExpr{} }

// NewConstant returns an expression holding only a constant.
func NewConstant(c int64) *LinearExpr { return &LinearExpr{offset: c} }

// Add adds la with coefficient 1.
func (e *LinearExpr) Add(la LinearArgument) *LinearExpr {
	la.addTo(e, 1)
	return e
}

// AddTerm adds la with the given coefficient.
func (e *LinearExpr) AddTerm(la LinearArgument, coeff int64) *LinearExpr {
	la.addTo(e, coeff)
	return e
}

// AddConstant adds c to the offset.
func (e *LinearExpr) AddConstant(c int64) *LinearExpr {
	e.offset += c
	return e
}

// Offset returns the constant part of the expression.
func (e *LinearExpr) Offset() int64 { return e.offset }

func (e *LinearExpr) addTo(dst *LinearExpr, coeff int64) {
	for _, t := range e.terms {
		dst.terms = append(dst.terms, Term{Var: t.Var, Coeff: t.Coeff * coeff})
	}
	dst.offset += e.offset * coeff
}

// normalize merges duplicate variables and drops zero coefficients, keeping
// first-appearance order.
func (e *LinearExpr) normalize() ([]Term, int64) {
	pos := make(map[int]int, len(e.terms))
	var out []Term
	for _, t := range e.terms {
		if i, ok := pos[t.Var]; ok {
			out[i].Coeff += t.Coeff
			continue
		}
		pos[t.Var] = len(out)
		out = append(out, t)
	}
	kept := out[:0]
	for _, t := range out {
		if t.Coeff != 0 {
			kept = append(kept, t)
		}
	}
	return kept, e.offset
}

// Sum returns the sum of the given arguments.
func Sum(args ...LinearArgument) *LinearExpr {
	e := NewLinearExpr()
	for _, a := range args {
		e.Add(a)
	}
	return e
}

// WeightedSum returns sum(coeffs[i] * args[i]). Extra coefficients are ignored.
func WeightedSum(args []LinearArgument, coeffs []int64) *LinearExpr {
	e := NewLinearExpr()
	for i, a := range args {
		if i < len(coeffs) {
			e.AddTerm(a, coeffs[i])
		}
	}
	return e
}
