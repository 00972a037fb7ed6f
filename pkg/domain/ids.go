package domain

import "strconv"

// ChainID is the opaque 64-bit selector identifying a reachable execution
// domain. Assigned by configuration, never derived from message content.
type ChainID uint64

func (c ChainID) String() string {
	return strconv.FormatUint(uint64(c), 10)
}

// ParseChainID validates and returns a ChainID from its decimal form.
func ParseChainID(s string) (ChainID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ChainID(v), nil
}

// Address is an address-like participant identity. A sender address is only
// meaningful relative to the chain it is allowed from.
type Address string

func (a Address) String() string {
	return string(a)
}

// IsNil returns true if the address is empty.
func (a Address) IsNil() bool {
	return a == ""
}

// MessageID is the relay-assigned unique key correlating an outbound
// submission with its eventual inbound delivery.
type MessageID string

func (m MessageID) String() string {
	return string(m)
}

// IsNil returns true if the message ID is empty.
func (m MessageID) IsNil() bool {
	return m == ""
}
