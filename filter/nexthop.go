package filter

import (
	"fmt"
	"net/netip"
)

// addrParse handles next hop and peer address expressions
func (e *Expr) addrParse() error {
	// check index
	if e.Idx != nil {
		return ErrIndex
	}

	// OP_TRUE is simple
	if e.Op == OP_TRUE {
		return nil
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

	// makes sense?
	if !p.IsSingleIP() && e.Op != OP_LIKE {
		return fmt.Errorf("value must be a single IP address for this operator")
	}

	e.Val = p
	return nil
}

func (e *Expr) addrEval(ev *Eval) bool {
	// get the address
	var addr netip.Addr
	switch e.Attr {
	case ATTR_NEXTHOP:
		addr = ev.Route.Attrs.NextHop()
	case ATTR_PEER_IP:
		if p := ev.Route.Peer; p != nil {
			addr = p.Addr
		}
	}
	if !addr.IsValid() {
		return false // no address, or invalid value
	} else if e.Op == OP_TRUE {
		return true // any address is OK
	}
	addr = addr.Unmap()

	// check
	ref := e.Val.(netip.Prefix)
	ra := ref.Addr()
	if ra.Is4() != addr.Is4() {
		return false // different address families never match
	}
	switch e.Op {
	case OP_EQ:
		return ra == addr
	case OP_LT:
		return addr.Less(ra)
	case OP_LE:
		return addr == ra || addr.Less(ra)
	case OP_GT:
		return ra.Less(addr)
	case OP_GE:
		return addr == ra || ra.Less(addr)
	case OP_LIKE:
		return ref.Bits() == 0 || ref.Contains(addr)
	}

	panic("unreachable")
}
