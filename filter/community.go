package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bgpfix/ribdump/attrs"
	"github.com/bgpfix/ribdump/json"
)

// parseCommunity parses "asn:value" into a single-element Community
func parseCommunity(v string) (attrs.Community, error) {
	var c attrs.Community
	s1, s2, ok := strings.Cut(strings.Trim(v, `[]" `), ":")
	if !ok {
		return c, ErrValue
	}
	asn, err := strconv.ParseUint(s1, 10, 16)
	if err != nil {
		return c, err
	}
	val, err := strconv.ParseUint(s2, 10, 16)
	if err != nil {
		return c, err
	}
	c.Add(uint16(asn), uint16(val))
	return c, nil
}

func (e *Expr) communityParse() error {
	// no index allowed
	if e.Idx != nil {
		return ErrIndex
	}

	// check operator
	switch e.Op {
	case OP_TRUE:
		e.Val = nil
	case OP_EQ:
		if e.Attr != ATTR_COMM {
			return ErrOp // extended communities are opaque
		}
		c, err := parseCommunity(fmt.Sprintf("%v", e.Val))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValue, e.Val)
		}
		e.Val = c
	case OP_LIKE: // value is a string
		re, err := regexp.Compile(e.Val.(string))
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		e.Val = re
	default:
		return ErrOp
	}

	return nil
}

func (e *Expr) communityEval(ev *Eval) bool {
	ats := ev.Route.Attrs

	switch e.Attr {
	case ATTR_COMM:
		com := ats.Community()
		if com.Len() == 0 {
			return false
		}
		switch e.Op {
		case OP_TRUE:
			return true
		case OP_EQ:
			ref := e.Val.(attrs.Community)
			return com.Has(ref.ASN[0], ref.Value[0])
		}

		// OP_LIKE: any "asn:value" matches?
		re := e.Val.(*regexp.Regexp)
		var buf []byte
		for i := range com.ASN {
			buf = strconv.AppendUint(buf[:0], uint64(com.ASN[i]), 10)
			buf = append(buf, ':')
			buf = strconv.AppendUint(buf, uint64(com.Value[i]), 10)
			if re.Match(buf) {
				return true
			}
		}
		return false

	case ATTR_COMM_EXT:
		com, _ := ats.Find(attrs.ATTR_EXT_COMMUNITY).(*attrs.ExtCom)
		if com == nil || len(com.Raw) == 0 {
			return false
		}
		if e.Op == OP_TRUE {
			return true
		}

		// OP_LIKE: any "0x..." value matches?
		re := e.Val.(*regexp.Regexp)
		var buf []byte
		for raw := com.Raw; len(raw) > 0; {
			n := min(8, len(raw))
			buf = json.Hex(buf[:0], raw[:n])
			if re.Match(buf[1 : len(buf)-1]) {
				return true
			}
			raw = raw[n:]
		}
		return false
	}

	return false
}
