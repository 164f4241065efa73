package filter

import (
	"fmt"
	"net/netip"
	"strings"
)

// parsePrefix parses v as a prefix, or as an address taken as a host prefix
func parsePrefix(v string) (netip.Prefix, error) {
	if strings.IndexByte(v, '/') < 0 {
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return netip.Prefix{}, err
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}
	p, err := netip.ParsePrefix(v)
	if err != nil {
		return p, err
	}
	return p.Masked(), nil
}

func (e *Expr) prefixParse() error {
	if e.Idx != nil {
		return ErrIndex
	} else if e.Op == OP_TRUE {
		return ErrOp
	}

	// value is string?
	v, ok := e.Val.(string)
	if !ok {
		return fmt.Errorf("invalid value: %v", e.Val)
	}

	// parse
	p, err := parsePrefix(v)
	if err != nil {
		return fmt.Errorf("invalid value %s: %w", v, err)
	}

	e.Val = p
	return nil
}

// prefixEval compares the route prefix vs. the reference prefix:
// < and <= mean "more specific than", > and >= "less specific than",
// ~ means "overlaps".
func (e *Expr) prefixEval(ev *Eval) bool {
	pfx := ev.Route.Prefix
	if !pfx.IsValid() {
		return false
	}

	ref := e.Val.(netip.Prefix)
	ra, rb := ref.Addr(), ref.Bits()
	pa, pb := pfx.Addr().Unmap(), pfx.Bits()
	if ra.Is4() != pa.Is4() {
		return false // different address families never match
	}

	switch e.Op {
	case OP_EQ:
		return rb == pb && ra == pa
	case OP_LT:
		return rb < pb && ref.Overlaps(pfx)
	case OP_LE:
		return rb <= pb && ref.Overlaps(pfx)
	case OP_GT:
		return rb > pb && pfx.Overlaps(ref)
	case OP_GE:
		return rb >= pb && pfx.Overlaps(ref)
	case OP_LIKE:
		return ref.Overlaps(pfx)
	}

	panic("unreachable")
}
