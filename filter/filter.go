// Package filter implements route filters, eg.
// prefix <= 10.0.0.0/8 && (as_origin == 13335 || com ~ "^65000:")
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bgpfix/ribdump/afi"
)

// Filter represents a route filter, compiled from a string representation.
type Filter struct {
	// raw filter string, eg:
	// !(ipv4 && (as_origin == 39282 || aspath[0] < 1000) && com ~ "11:22")
	String string

	// the first parsed expression in the filter
	First *Expr
}

// Expr represents an expression like <attribute> <operator> <value>,
// optionally linked with the next expression using a logical AND or OR.
type Expr struct {
	Filter *Filter // root filter, must be non-nil
	String string  // raw expression string

	Not  bool  // negate the final result of this expression?
	And  bool  // apply logical AND with the next expression? (if false, apply OR)
	Next *Expr // next expression (nil means last)

	Attr Attr // attribute
	Idx  any  // index inside the attribute (eg. int(0) if aspath[0])
	Op   Op   // operator
	Val  any  // value to use (string, int, regexp, etc OR *Expr if nested)
}

type (
	Attr = int
	Op   = int
)

const (
	ATTR_EXPR      Attr = iota // sub-expression in value (nested)
	ATTR_AF                    // address family
	ATTR_PREFIX                // route prefix
	ATTR_ASPATH                // AS_PATH attribute
	ATTR_ORIGIN_AS             // origin ASNs, bogons excluded
	ATTR_NEXTHOP               // NEXT_HOP or MP_REACH next hop
	ATTR_COMM                  // COMMUNITY attribute
	ATTR_COMM_EXT              // EXTENDED_COMMUNITY attribute
	ATTR_MED                   // MULTI_EXIT_DISC attribute
	ATTR_LOCALPREF             // LOCAL_PREF attribute
	ATTR_PEER_AS               // peer AS number
	ATTR_PEER_IP               // peer address
)

const (
	OP_TRUE Op = iota // is true? (no value)
	OP_EQ             // ==
	OP_LT             // <
	OP_LE             // <=
	OP_GT             // >
	OP_GE             // >=
	OP_LIKE           // ~ (match)
)

func NewFilter(filter string) (*Filter, error) {
	f := &Filter{
		String: filter,
	}

	// parse the filter string
	parsed, left, err := f.parse(filter, 0)
	if err != nil {
		if left != "" {
			return nil, fmt.Errorf("filter '%s': parse error near '%s': %w", filter, left, err)
		} else {
			return nil, fmt.Errorf("filter '%s': parse error: %w", filter, err)
		}
	}

	f.First = parsed
	return f, nil
}

func (f *Filter) parse(expstr string, lvl int) (parsed *Expr, left string, err error) {
	str := strings.TrimSpace(expstr)
	if len(str) == 0 {
		return nil, str, ErrEmpty
	}

	parsed = &Expr{String: str}
	exp := parsed
	for {
		// are we done?
		str = strings.TrimSpace(str)
		if len(str) == 0 {
			break
		}

		// expect next expression?
		if exp.Filter != nil {
			switch {
			case str[0] == ')': // end of sub-expression
				if lvl > 0 {
					return parsed, str[1:], nil
				} else {
					return nil, str, ErrUnmatched
				}
			case strings.HasPrefix(str, "&&"):
				exp.And = true
				str = str[2:]
			case strings.HasPrefix(str, "||"):
				exp.And = false
				str = str[2:]
			default:
				return nil, str, ErrLogic
			}

			str = strings.TrimSpace(str)
			if len(str) == 0 {
				return nil, str, ErrExpr
			}
			exp.Next = &Expr{String: str}
			exp = exp.Next
		}

		// negation or sub-expression?
		switch str[0] {
		case '!':
			str = str[1:]
			exp.Not = !exp.Not
			continue

		case '(':
			str = str[1:]

			nexp, nstr, nerr := f.parse(str, lvl+1)
			if nerr != nil {
				if nstr != "" {
					str = nstr
				}
				return nil, str, nerr
			}

			exp.Attr = ATTR_EXPR
			exp.Val = nexp
			exp.Filter = f // ready for use
			str = nstr
			continue
		}

		// read attribute name
		var attr string
		for i, c := range str {
			if c == ' ' || c == '[' || c == ')' {
				attr = str[:i]
				str = str[i:]
				break
			}
		}
		if len(attr) == 0 {
			attr = str
			str = ""
		}

		// read index
		var index string
		if len(str) > 0 && str[0] == '[' {
			before, after, found := strings.Cut(str[1:], "]")
			if before == "" || !found {
				return nil, str, ErrIndex
			}
			index = before
			str = after
		}

		// read operator
		var op string
		str = strings.TrimSpace(str)
		if len(str) > 1 && str[0:2] != "&&" && str[0:2] != "||" && str[0] != ')' {
			before, after, found := strings.Cut(str, " ")
			if found {
				op = before
				str = after
			}
		}

		// read value
		var val string
		if op != "" {
			str = strings.TrimSpace(str)
			if len(str) == 0 {
				return nil, str, ErrValue
			} else if str[0] == '"' {
				// quoted string
				esc, closed := false, false
				var qs strings.Builder
				for i, c := range str {
					if i == 0 {
						continue
					} else if esc {
						esc = false
					} else if c == '\\' {
						esc = true
						continue
					} else if c == '"' {
						val = qs.String()
						str = str[i+1:]
						closed = true
						break
					}
					qs.WriteRune(c)
				}
				if !closed {
					return nil, str, ErrValue
				}
			} else {
				// unquoted string (till space or end of string or closing parenthesis)
				for i, c := range str {
					if c == ' ' || c == ')' {
						val = str[:i]
						str = str[i:]
						break
					}
				}
				if val == "" {
					val = str
					str = ""
				}
			}
		}

		// cut what's left after our expression
		exp.String = strings.TrimSpace(exp.String[:len(exp.String)-len(str)])

		// basic sanity checks
		if len(attr) == 0 {
			return nil, exp.String, ErrAttr
		} else if op != "" && len(val) == 0 {
			return nil, exp.String, ErrOpValue
		}

		// parse the attribute, index, operator and value
		if !exp.parseAttr(attr) {
			return nil, exp.String, ErrAttr
		} else if !exp.parseIndex(index) {
			return nil, exp.String, ErrIndex
		} else if !exp.parseOp(op) {
			return nil, exp.String, ErrOp
		} else if !exp.parseValue(val) {
			return nil, exp.String, ErrValue
		}

		// more sanity checks for specific attributes
		if err := exp.parseCheck(); err != nil {
			return nil, exp.String, err
		}

		// it's good for use now
		exp.Filter = f
	}

	if lvl > 0 {
		return nil, "", ErrUnmatched // we were expecting a closing parenthesis
	} else {
		return parsed, "", nil
	}
}

func (e *Expr) parseIndex(index string) bool {
	if index == "" {
		return true
	} else if e.Idx != nil {
		return false // already set from elsewhere
	}

	// parse as int?
	if v, err := strconv.Atoi(index); err == nil {
		e.Idx = v
	} else {
		e.Idx = index
	}

	return true
}

func (e *Expr) parseOp(op string) bool {
	if op == "" {
		return true
	} else if e.Op != 0 {
		return false // already set from elsewhere
	}

	switch op {
	case "==", "=":
		e.Op = OP_EQ
	case "!=", "=!":
		e.Op = OP_EQ
		e.Not = !e.Not
	case "<":
		e.Op = OP_LT
	case "<=":
		e.Op = OP_LE
	case ">":
		e.Op = OP_GT
	case ">=":
		e.Op = OP_GE
	case "~":
		e.Op = OP_LIKE
	case "!~", "~!":
		e.Op = OP_LIKE
		e.Not = !e.Not
	default:
		return false // invalid operator
	}

	return true
}

func (e *Expr) parseValue(val string) bool {
	if val == "" {
		return true
	} else if e.Val != nil {
		return false // already set from elsewhere
	}

	if e.Op == OP_LIKE {
		e.Val = val // attribute handler should interpret this
	} else if v, err := strconv.ParseInt(val, 0, 64); err == nil {
		e.Val = int(v)
	} else {
		e.Val = val
	}

	return e.Val != nil
}

// parseAttr parses the attribute name
// it can set the attribute type, operator and value iff needed
func (e *Expr) parseAttr(attr string) bool {
	attr = strings.ToLower(attr)
	attr = strings.ReplaceAll(attr, "-", "_")

	switch attr {
	case "prefix", "pfx":
		e.Attr = ATTR_PREFIX

	case "af":
		e.Attr = ATTR_AF
	case "ipv4":
		e.Attr = ATTR_AF
		e.Op = OP_EQ
		e.Val = afi.AFI_IPV4
	case "ipv6":
		e.Attr = ATTR_AF
		e.Op = OP_EQ
		e.Val = afi.AFI_IPV6

	case "aspath", "as_path":
		e.Attr = ATTR_ASPATH
	case "as_origin":
		e.Attr = ATTR_ASPATH
		e.Idx = -1
	case "as_upstream":
		e.Attr = ATTR_ASPATH
		e.Idx = -2
	case "as_peer":
		e.Attr = ATTR_ASPATH
		e.Idx = 0

	case "origin", "origins":
		e.Attr = ATTR_ORIGIN_AS

	case "nexthop", "nh":
		e.Attr = ATTR_NEXTHOP

	case "com", "community":
		e.Attr = ATTR_COMM
	case "com_ext", "ext_community", "ext_com":
		e.Attr = ATTR_COMM_EXT

	case "med":
		e.Attr = ATTR_MED
	case "localpref", "local_pref", "lp":
		e.Attr = ATTR_LOCALPREF

	case "peer_as", "peeras":
		e.Attr = ATTR_PEER_AS
	case "peer_ip", "peer", "peer_addr":
		e.Attr = ATTR_PEER_IP

	default:
		return false
	}

	return true
}

func (e *Expr) parseCheck() error {
	switch e.Attr {
	case ATTR_EXPR:
		return nil
	case ATTR_AF:
		return e.afParse()
	case ATTR_PREFIX:
		return e.prefixParse()
	case ATTR_NEXTHOP, ATTR_PEER_IP:
		return e.addrParse()
	case ATTR_ASPATH:
		return e.aspathParse()
	case ATTR_COMM, ATTR_COMM_EXT:
		return e.communityParse()
	case ATTR_ORIGIN_AS, ATTR_MED, ATTR_LOCALPREF, ATTR_PEER_AS:
		return e.numParse()
	default:
		return fmt.Errorf("unsupported attribute")
	}
}

func (e *Expr) eval(ev *Eval) (res bool) {
	switch e.Attr {
	case ATTR_EXPR: // sub-expression
		res = ev.exprEval(e.Val.(*Expr))
	case ATTR_AF:
		res = e.afEval(ev)
	case ATTR_PREFIX:
		res = e.prefixEval(ev)
	case ATTR_NEXTHOP, ATTR_PEER_IP:
		res = e.addrEval(ev)
	case ATTR_ASPATH:
		res = e.aspathEval(ev)
	case ATTR_COMM, ATTR_COMM_EXT:
		res = e.communityEval(ev)
	case ATTR_ORIGIN_AS, ATTR_MED, ATTR_LOCALPREF, ATTR_PEER_AS:
		res = e.numEval(ev)
	default:
		panic("not implemented")
	}

	if e.Not {
		return !res
	} else {
		return res
	}
}
