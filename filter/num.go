package filter

import (
	"fmt"

	"github.com/bgpfix/ribdump/attrs"
)

// numParse handles expressions on integer route properties
func (e *Expr) numParse() error {
	if e.Idx != nil {
		return ErrIndex
	}

	switch e.Op {
	case OP_TRUE:
		return nil // attribute present
	case OP_LIKE:
		return ErrOp
	}

	v, ok := e.Val.(int)
	if !ok || v < 0 || v > 0xffffffff {
		return fmt.Errorf("%w: %v", ErrValue, e.Val)
	}
	return nil
}

func (e *Expr) numEval(ev *Eval) bool {
	rt := ev.Route

	// collect values
	var vals []uint32
	switch e.Attr {
	case ATTR_ORIGIN_AS:
		origins, err := ev.Origins()
		if err != nil {
			return false
		}
		vals = origins
	case ATTR_MED:
		if v, ok := rt.Attrs.U32(attrs.ATTR_MED); ok {
			vals = append(vals, v)
		}
	case ATTR_LOCALPREF:
		if v, ok := rt.Attrs.U32(attrs.ATTR_LOCALPREF); ok {
			vals = append(vals, v)
		}
	case ATTR_PEER_AS:
		if rt.Peer != nil {
			vals = append(vals, rt.Peer.AS)
		}
	}

	if e.Op == OP_TRUE {
		return len(vals) > 0
	}

	// any value match is ok
	ref := uint32(e.Val.(int))
	for _, v := range vals {
		switch e.Op {
		case OP_EQ:
			if v == ref {
				return true
			}
		case OP_LT:
			if v < ref {
				return true
			}
		case OP_LE:
			if v <= ref {
				return true
			}
		case OP_GT:
			if v > ref {
				return true
			}
		case OP_GE:
			if v >= ref {
				return true
			}
		}
	}
	return false
}
