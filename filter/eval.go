package filter

import (
	"github.com/bgpfix/ribdump/mrt"
)

// Eval efficiently evaluates Filters against a given Route.
type Eval struct {
	Route *mrt.Route // route being evaluated

	origins []uint32        // origin ASNs of Route, if already computed
	orerr   error           // origin extraction error, if any
	orok    bool            // origins valid for Route?
	cache   map[string]bool // cached results of evaluated expressions
}

// NewEval creates a new Eval instance.
// The SetRoute method must be called before use.
func NewEval(use_cache bool) *Eval {
	ev := &Eval{}
	if use_cache {
		ev.cache = make(map[string]bool)
	}
	return ev
}

// SetRoute sets the Route to be evaluated.
// It must be called before using the Run method.
func (ev *Eval) SetRoute(rt *mrt.Route) {
	ev.Route = rt
	ev.ClearCache()
}

// ClearCache drops cached results, eg. after the Route was modified.
func (ev *Eval) ClearCache() {
	clear(ev.cache)
	ev.origins, ev.orerr, ev.orok = ev.origins[:0], nil, false
}

// Run evaluates given Filter f against the current route.
func (ev *Eval) Run(f *Filter) (result bool) {
	if ev.Route == nil || f == nil {
		return false
	}
	return ev.exprEval(f.First)
}

// Origins returns the origin ASNs of the current route, computed once per route
func (ev *Eval) Origins() ([]uint32, error) {
	if !ev.orok {
		ev.orok = true
		if ap := ev.Route.Attrs.Aspath(); ap != nil {
			ev.origins, ev.orerr = ap.Origins(ev.origins[:0])
		}
	}
	return ev.origins, ev.orerr
}

func (ev *Eval) exprEval(first *Expr) (result bool) {
	prev_and := false
	any_ok := false
	for e := first; e != nil; e = e.Next {
		var res, cache_ok bool
		switch {
		case ev.cache != nil:
			if res, cache_ok = ev.cache[e.String]; cache_ok {
				break // use cached result
			}
			fallthrough
		default:
			res = e.eval(ev)
			if ev.cache != nil {
				ev.cache[e.String] = res
			}
		}

		// any success so far?
		any_ok = any_ok || res

		// no need to keep checking?
		is_and := prev_and || e.And // left or right is AND?
		if res {
			if !is_and {
				return true
			}
		} else {
			if is_and {
				return false
			}
		}
		prev_and = e.And
	}

	return any_ok
}
