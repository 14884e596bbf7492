package solver

import (
	"sort"

	"github.com/kilianp07/a100/core/cpmodel"
)

// domains holds the current bounds of every variable during search.
type domains struct {
	lo, hi []int64
}

func newDomains(m *cpmodel.Model) *domains {
	d := &domains{lo: make([]int64, m.NumVars()), hi: make([]int64, m.NumVars())}
	for i, dom := range m.Domains {
		d.lo[i], d.hi[i] = dom.Min, dom.Max
	}
	return d
}

func (d *domains) clone() *domains {
	return &domains{lo: append([]int64(nil), d.lo...), hi: append([]int64(nil), d.hi...)}
}

func (d *domains) fixed(v int) bool { return d.lo[v] == d.hi[v] }

func (d *domains) assign(v int, val int64) {
	d.lo[v], d.hi[v] = val, val
}

// setMin raises the lower bound of v. ok is false when the domain empties.
func (d *domains) setMin(v int, val int64) (changed, ok bool) {
	if val <= d.lo[v] {
		return false, true
	}
	d.lo[v] = val
	return true, val <= d.hi[v]
}

// setMax lowers the upper bound of v. ok is false when the domain empties.
func (d *domains) setMax(v int, val int64) (changed, ok bool) {
	if val >= d.hi[v] {
		return false, true
	}
	d.hi[v] = val
	return true, val >= d.lo[v]
}

func (d *domains) isTrue(l cpmodel.Literal) bool {
	if l.Negated {
		return d.hi[l.Var] == 0
	}
	return d.lo[l.Var] == 1
}

func (d *domains) isFalse(l cpmodel.Literal) bool {
	if l.Negated {
		return d.lo[l.Var] == 1
	}
	return d.hi[l.Var] == 0
}

// setLiteral fixes l to val.
func (d *domains) setLiteral(l cpmodel.Literal, val bool) (changed, ok bool) {
	if val != l.Negated {
		return d.setMin(l.Var, 1)
	}
	return d.setMax(l.Var, 0)
}

// propagator runs constraint filtering to a fixpoint.
type propagator struct {
	m *cpmodel.Model
	// per cumulative: the tasks that can ever consume capacity
	tasks [][]task
}

type task struct {
	start    int
	size     int64
	demand   int64
	presence cpmodel.Literal
	optional bool
}

func newPropagator(m *cpmodel.Model) *propagator {
	p := &propagator{m: m, tasks: make([][]task, len(m.Cumulatives))}
	for i, c := range m.Cumulatives {
		for k, ivIdx := range c.Intervals {
			iv := m.Intervals[ivIdx]
			if iv.Size == 0 || c.Demands[k] == 0 {
				continue
			}
			p.tasks[i] = append(p.tasks[i], task{
				start:    iv.Start,
				size:     iv.Size,
				demand:   c.Demands[k],
				presence: iv.Presence,
				optional: iv.Optional,
			})
		}
	}
	return p
}

// propagate filters d until nothing changes. It returns false when a
// constraint cannot be satisfied.
func (p *propagator) propagate(d *domains) bool {
	for {
		dirty := false
		for i := range p.m.Linears {
			changed, ok := p.linear(d, &p.m.Linears[i])
			if !ok {
				return false
			}
			dirty = dirty || changed
		}
		for i := range p.m.Cumulatives {
			changed, ok := p.cumulative(d, p.m.Cumulatives[i].Capacity, p.tasks[i])
			if !ok {
				return false
			}
			dirty = dirty || changed
		}
		if !dirty {
			return true
		}
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

func termBounds(d *domains, t cpmodel.Term) (int64, int64) {
	if t.Coeff > 0 {
		return t.Coeff * d.lo[t.Var], t.Coeff * d.hi[t.Var]
	}
	return t.Coeff * d.hi[t.Var], t.Coeff * d.lo[t.Var]
}

// linear applies bounds consistency to an enforced linear constraint. While
// the enforcement is undecided it only detects the case where the
// constraint is already violated and a single enforcement literal is left,
// which must then be false.
func (p *propagator) linear(d *domains, c *cpmodel.LinearConstraint) (changed, ok bool) {
	unknown := 0
	var last cpmodel.Literal
	for _, l := range c.Enforcement {
		if d.isFalse(l) {
			return false, true
		}
		if !d.isTrue(l) {
			unknown++
			last = l
		}
	}
	var minSum, maxSum int64
	for _, t := range c.Terms {
		lo, hi := termBounds(d, t)
		minSum += lo
		maxSum += hi
	}
	violated := minSum > c.Ub || maxSum < c.Lb
	if unknown > 0 {
		if violated && unknown == 1 {
			return d.setLiteral(last, false)
		}
		return false, true
	}
	if violated {
		return false, false
	}
	for _, t := range c.Terms {
		lo, hi := termBounds(d, t)
		restMin, restMax := minSum-lo, maxSum-hi
		var newLo, newHi int64
		if t.Coeff > 0 {
			newLo = ceilDiv(c.Lb-restMax, t.Coeff)
			newHi = floorDiv(c.Ub-restMin, t.Coeff)
		} else {
			newLo = ceilDiv(c.Ub-restMin, t.Coeff)
			newHi = floorDiv(c.Lb-restMax, t.Coeff)
		}
		ch, ok := d.setMin(t.Var, newLo)
		if !ok {
			return true, false
		}
		changed = changed || ch
		ch, ok = d.setMax(t.Var, newHi)
		if !ok {
			return true, false
		}
		changed = changed || ch
	}
	return changed, true
}

func (t task) present(d *domains) bool { return !t.optional || d.isTrue(t.presence) }

func (t task) absent(d *domains) bool { return t.optional && d.isFalse(t.presence) }

// segment is a run of instants [from, to) with a constant compulsory load.
type segment struct {
	from, to, load int64
}

// compulsoryProfile sums the compulsory parts of the present tasks into
// sorted disjoint segments. ok is false when a segment exceeds capacity.
func compulsoryProfile(d *domains, capacity int64, tasks []task) (profile []segment, ok bool) {
	type event struct{ at, delta int64 }
	var evs []event
	for _, t := range tasks {
		if !t.present(d) {
			continue
		}
		if from, to := d.hi[t.start], d.lo[t.start]+t.size; from < to {
			evs = append(evs, event{from, t.demand}, event{to, -t.demand})
		}
	}
	sort.Slice(evs, func(i, j int) bool { return evs[i].at < evs[j].at })
	var load int64
	for i := 0; i < len(evs); {
		at := evs[i].at
		for ; i < len(evs) && evs[i].at == at; i++ {
			load += evs[i].delta
		}
		if load > capacity {
			return nil, false
		}
		if load > 0 && i < len(evs) {
			profile = append(profile, segment{from: at, to: evs[i].at, load: load})
		}
	}
	return profile, true
}

// cumulative is a time-table filter: it builds the profile of compulsory
// parts of present tasks, fails on overload, and pushes the start bounds of
// present tasks (or removes optional ones) so that they fit on the profile.
func (p *propagator) cumulative(d *domains, capacity int64, tasks []task) (changed, ok bool) {
	for _, t := range tasks {
		if t.absent(d) || t.demand <= capacity {
			continue
		}
		if t.present(d) {
			return changed, false
		}
		ch, ok := d.setLiteral(t.presence, false)
		if !ok {
			return true, false
		}
		changed = changed || ch
	}
	profile, ok := compulsoryProfile(d, capacity, tasks)
	if !ok {
		return changed, false
	}
	for _, t := range tasks {
		if t.absent(d) {
			continue
		}
		present := t.present(d)
		ownFrom, ownTo := d.hi[t.start], d.lo[t.start]+t.size
		own := present && ownFrom < ownTo
		// fits reports whether t placed at s stays within capacity, with the
		// lowest and highest overloaded instants otherwise.
		fits := func(s int64) (bool, int64, int64) {
			firstBad, lastBad := int64(-1), int64(-1)
			bad := false
			check := func(from, to, load int64) {
				if from >= to || load+t.demand <= capacity {
					return
				}
				if !bad {
					firstBad = from
				}
				lastBad = to - 1
				bad = true
			}
			end := s + t.size
			for _, seg := range profile {
				if seg.to <= s {
					continue
				}
				if seg.from >= end {
					break
				}
				a, b := max(seg.from, s), min(seg.to, end)
				if !own {
					check(a, b, seg.load)
					continue
				}
				check(a, min(b, ownFrom), seg.load)
				check(max(a, ownFrom), min(b, ownTo), seg.load-t.demand)
				check(max(a, ownTo), b, seg.load)
			}
			return !bad, firstBad, lastBad
		}
		lo, hi := d.lo[t.start], d.hi[t.start]
		newLo := lo
		for newLo <= hi {
			ok, _, lastBad := fits(newLo)
			if ok {
				break
			}
			newLo = lastBad + 1
		}
		if newLo > hi {
			if present {
				return changed, false
			}
			ch, ok := d.setLiteral(t.presence, false)
			if !ok {
				return true, false
			}
			changed = changed || ch
			continue
		}
		newHi := hi
		for newHi >= newLo {
			ok, firstBad, _ := fits(newHi)
			if ok {
				break
			}
			newHi = firstBad - t.size
		}
		if !present {
			continue
		}
		ch, _ := d.setMin(t.start, newLo)
		changed = changed || ch
		ch, _ = d.setMax(t.start, newHi)
		changed = changed || ch
	}
	return changed, true
}
