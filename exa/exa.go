// Package exa renders RIB routes as ExaBGP API route commands, and parses them back.
package exa

import (
	"strconv"
	"strings"
)

// Exa represents an ExaBGP route announcement/withdrawal
// Focuses on the most commonly used attributes (80/20 approach)
type Exa struct {
	Str string   // parsed line (optional)
	Tok []string // all tokens in line (optional)

	Neighbor  string   // peer address (optional)
	Action    string   // announce or withdraw
	Prefix    string   // IP prefix (e.g., "10.0.0.1/24")
	NextHop   string   // next-hop IP address or "self"
	Origin    string   // IGP, EGP, INCOMPLETE (optional)
	ASPath    []uint32 // AS path sequence (optional)
	ASSet     []uint32 // AS_SET after the sequence, eg. an aggregated origin (optional)
	MED       *uint32  // Multi-Exit Discriminator (optional)
	LocalPref *uint32  // Local preference (optional)
	Community []string // Community values in brackets [no-export] or [123:456]
}

// NewExa returns a new, empty Exa instance
func NewExa() *Exa {
	return &Exa{}
}

// NewExaLine creates a new Exa and parses the given command line
func NewExaLine(line string) (*Exa, error) {
	r := NewExa()
	if err := r.Parse(line); err != nil {
		return nil, err
	} else {
		return r, nil
	}
}

// Reset clears all fields in Exa
func (r *Exa) Reset() {
	*r = Exa{}
}

// Parse parses an ExaBGP route command line
// Supports:
// - [neighbor <ip>] announce route <prefix> next-hop <ip|self> [origin <origin>] [as-path [asn... [( asn... )]]] [med <value>] [local-preference <value>] [community [value...]]
// - [neighbor <ip>] withdraw route <prefix>
func (r *Exa) Parse(line string) error {
	r.Str = strings.TrimSpace(line)
	if r.Str == "" {
		return ErrEmptyLine
	}

	r.Tok = strings.Fields(r.Str)
	tok := r.Tok

	// neighbor selector?
	r.Neighbor = ""
	if tok[0] == "neighbor" {
		if len(tok) < 2 {
			return ErrMissingValue
		}
		r.Neighbor = tok[1]
		tok = tok[2:]
	}
	if len(tok) < 3 {
		return ErrInvalidFormat
	}

	// Basic validation
	r.Action = tok[0]
	r.Prefix = tok[2]
	if r.Action != "announce" && r.Action != "withdraw" {
		return ErrInvalidAction
	} else if tok[1] != "route" {
		return ErrOnlyRoute
	}

	// withdraw has no further parameters
	if r.Action == "withdraw" {
		if len(tok) > 3 {
			return ErrInvalidFormat
		} else {
			return nil
		}
	}

	// Parse remaining tokens
	i := 3
	for i < len(tok) {
		switch tok[i] {
		case "next-hop":
			if i+1 >= len(tok) {
				return ErrMissingValue
			}
			r.NextHop = tok[i+1]
			i += 2
		case "origin":
			if i+1 >= len(tok) {
				return ErrMissingValue
			}
			r.Origin = tok[i+1]
			i += 2
		case "as-path":
			// Parse AS path: as-path [ 65001 65002 ( 65003 65004 ) ]
			seq, set, consumed := parseAspath(tok[i+1:])
			r.ASPath, r.ASSet = seq, set
			i += consumed + 1
		case "med":
			if i+1 >= len(tok) {
				return ErrMissingValue
			}
			if val, err := strconv.ParseUint(tok[i+1], 10, 32); err == nil {
				med := uint32(val)
				r.MED = &med
			}
			i += 2
		case "local-preference":
			if i+1 >= len(tok) {
				return ErrMissingValue
			}
			if val, err := strconv.ParseUint(tok[i+1], 10, 32); err == nil {
				lp := uint32(val)
				r.LocalPref = &lp
			}
			i += 2
		case "community":
			// Parse community: community [ no-export ] or community [ 666:666 ]
			communities, consumed := parseCommunity(tok[i+1:])
			r.Community = communities
			i += consumed + 1
		default:
			// Skip unknown tokens
			i++
		}
	}

	return nil
}

// String converts Exa back to ExaBGP API format
func (r *Exa) String() string {
	var parts []string
	if r.Neighbor != "" {
		parts = append(parts, "neighbor", r.Neighbor)
	}
	parts = append(parts, r.Action, "route", r.Prefix)

	if r.NextHop != "" {
		parts = append(parts, "next-hop", r.NextHop)
	}

	if r.Origin != "" {
		parts = append(parts, "origin", r.Origin)
	}

	if len(r.ASPath) > 0 || len(r.ASSet) > 0 {
		parts = append(parts, "as-path", formatAspath(r.ASPath, r.ASSet))
	}

	if r.MED != nil {
		parts = append(parts, "med", strconv.FormatUint(uint64(*r.MED), 10))
	}

	if r.LocalPref != nil {
		parts = append(parts, "local-preference", strconv.FormatUint(uint64(*r.LocalPref), 10))
	}

	if len(r.Community) > 0 {
		parts = append(parts, "community", formatCommunity(r.Community))
	}

	return strings.Join(parts, " ")
}

// parseAspath parses AS path from tokens like: [ 65001 65002 ( 65003 65004 ) ]
func parseAspath(tokens []string) (seq, set []uint32, consumed int) {
	if len(tokens) == 0 || tokens[0] != "[" {
		return nil, nil, 0
	}

	consumed = 1 // for opening [
	inset := false
	for i := 1; i < len(tokens); i++ {
		consumed++
		switch tokens[i] {
		case "]":
			return seq, set, consumed
		case "(":
			inset = true
			continue
		case ")":
			inset = false
			continue
		}
		if asn, err := strconv.ParseUint(tokens[i], 10, 32); err == nil {
			if inset {
				set = append(set, uint32(asn))
			} else {
				seq = append(seq, uint32(asn))
			}
		}
	}

	return seq, set, consumed
}

// formatAspath formats AS path as ExaBGP expects: [ 65001 65002 ( 65003 ) ]
func formatAspath(seq, set []uint32) string {
	parts := []string{"["}
	for _, asn := range seq {
		parts = append(parts, strconv.FormatUint(uint64(asn), 10))
	}
	if len(set) > 0 {
		parts = append(parts, "(")
		for _, asn := range set {
			parts = append(parts, strconv.FormatUint(uint64(asn), 10))
		}
		parts = append(parts, ")")
	}
	parts = append(parts, "]")
	return strings.Join(parts, " ")
}

// parseCommunity parses community from tokens like: [ no-export ] or [ 666:666 ]
func parseCommunity(tokens []string) ([]string, int) {
	if len(tokens) == 0 || tokens[0] != "[" {
		return nil, 0
	}

	var communities []string
	consumed := 1 // for opening [

	for i := 1; i < len(tokens); i++ {
		consumed++
		if tokens[i] == "]" {
			break
		}

		// Normalize community name to canonical form
		community := tokens[i]
		normalized := strings.ToLower(strings.ReplaceAll(community, "_", "-"))

		switch normalized {
		case "no-export", "noexport":
			communities = append(communities, "no-export")
		case "no-advertise", "noadvertise":
			communities = append(communities, "no-advertise")
		case "no-export-subconfed", "noexportsubconfed":
			communities = append(communities, "no-export-subconfed")
		case "no-peer", "nopeer":
			communities = append(communities, "no-peer")
		case "blackhole":
			communities = append(communities, "blackhole")
		default:
			// For AS:value format, keep original (case-sensitive for numbers)
			communities = append(communities, community)
		}
	}

	return communities, consumed
}

// formatCommunity formats communities as ExaBGP expects: [ no-export ] or [ 123:456 ]
func formatCommunity(communities []string) string {
	if len(communities) == 0 {
		return "[ ]"
	}
	return "[ " + strings.Join(communities, " ") + " ]"
}
