package rtpext

import (
	"fmt"
	"strconv"
	"strings"

	"firestige.xyz/aulev/internal/core"
)

// Direction is the negotiated stream direction of an extmap entry.
type Direction uint8

const (
	DirectionInactive Direction = 0
	DirectionSendOnly Direction = 1 << iota
	DirectionRecvOnly
	DirectionSendRecv = DirectionSendOnly | DirectionRecvOnly
)

func (d Direction) String() string {
	switch d {
	case DirectionSendOnly:
		return "sendonly"
	case DirectionRecvOnly:
		return "recvonly"
	case DirectionSendRecv:
		return "sendrecv"
	default:
		return "inactive"
	}
}

// ParseDirection parses the SDP direction token of an extmap entry.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "sendonly":
		return DirectionSendOnly, nil
	case "recvonly":
		return DirectionRecvOnly, nil
	case "sendrecv":
		return DirectionSendRecv, nil
	case "inactive":
		return DirectionInactive, nil
	default:
		return DirectionInactive, fmt.Errorf("%w: unknown direction %q", core.ErrInvalidExtmap, s)
	}
}

// Extmap is one negotiated header extension entry, the parsed form of the
// SDP attribute
//
//	a=extmap:<id>[/<direction>] <uri> [<attributes>]
type Extmap struct {
	ID         uint8
	Direction  Direction
	URI        string
	Attributes string
}

// String serializes the entry in SDP form without the "a=" prefix.
// DirectionSendRecv is the SDP default and its token is omitted.
func (m Extmap) String() string {
	var b strings.Builder
	b.WriteString("extmap:")
	b.WriteString(strconv.Itoa(int(m.ID)))
	if m.Direction != DirectionSendRecv {
		b.WriteByte('/')
		b.WriteString(m.Direction.String())
	}
	b.WriteByte(' ')
	b.WriteString(m.URI)
	if m.Attributes != "" {
		b.WriteByte(' ')
		b.WriteString(m.Attributes)
	}
	return b.String()
}

// ParseExtmap parses an extmap line, with or without the leading "a=".
func ParseExtmap(line string) (Extmap, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "a="))
	if !strings.HasPrefix(s, "extmap:") {
		return Extmap{}, fmt.Errorf("%w: missing extmap prefix in %q", core.ErrInvalidExtmap, line)
	}
	s = strings.TrimPrefix(s, "extmap:")

	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Extmap{}, fmt.Errorf("%w: %q", core.ErrInvalidExtmap, line)
	}

	var m Extmap
	m.Direction = DirectionSendRecv

	idPart := fields[0]
	if slash := strings.IndexByte(idPart, '/'); slash >= 0 {
		dir, err := ParseDirection(idPart[slash+1:])
		if err != nil {
			return Extmap{}, err
		}
		m.Direction = dir
		idPart = idPart[:slash]
	}

	id, err := strconv.Atoi(idPart)
	if err != nil || id < 1 || id > 255 {
		return Extmap{}, fmt.Errorf("%w: bad id %q", core.ErrInvalidExtmap, fields[0])
	}
	m.ID = uint8(id)

	m.URI = fields[1]
	if m.URI == "" {
		return Extmap{}, fmt.Errorf("%w: empty uri", core.ErrInvalidExtmap)
	}

	if len(fields) > 2 {
		m.Attributes = strings.Join(fields[2:], " ")
	}
	return m, nil
}

// Caps is the capability structure extension attributes are advertised
// through, keyed by negotiated extension ID.
type Caps struct {
	Extmaps map[uint8]Extmap
}

func NewCaps() *Caps {
	return &Caps{Extmaps: make(map[uint8]Extmap)}
}

// SetExtmap embeds an entry into the caps. Reusing an ID for a different
// URI is a negotiation conflict and fails.
func (c *Caps) SetExtmap(m Extmap) error {
	if c.Extmaps == nil {
		c.Extmaps = make(map[uint8]Extmap)
	}
	if prev, ok := c.Extmaps[m.ID]; ok && prev.URI != m.URI {
		return fmt.Errorf("%w: id %d already maps to %s", core.ErrInvalidExtmap, m.ID, prev.URI)
	}
	c.Extmaps[m.ID] = m
	return nil
}

// Extmap returns the entry registered under id.
func (c *Caps) Extmap(id uint8) (Extmap, bool) {
	m, ok := c.Extmaps[id]
	return m, ok
}

// SetCapsFromAttributesHelper embeds ext's attribute string into caps
// under id, validating the ID against the range allowed by the
// extension's supported framing modes (1-14 one-byte, 1-255 two-byte).
//
// Extensions call this from their SetCapsFromAttributes after deriving
// the attribute string from their own configuration.
func SetCapsFromAttributesHelper(ext Extension, caps *Caps, id uint8, attributes string) error {
	supported := ext.SupportedFlags()
	maxID := uint8(255)
	if !supported.Has(FlagTwoByte) {
		maxID = 14
	}
	if id < 1 || id > maxID {
		return fmt.Errorf("%w: id %d out of range for %s", core.ErrInvalidExtmap, id, ext.URI())
	}
	return caps.SetExtmap(Extmap{
		ID:         id,
		Direction:  DirectionSendRecv,
		URI:        ext.URI(),
		Attributes: attributes,
	})
}
