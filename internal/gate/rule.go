package gate

import "fmt"

// Rule is the entitlement policy attached to a track. Exactly one of the
// concrete variants applies; a track with no rule carries None.
type Rule interface {
	Kind() string
	isRule()
}

// None means the track is playable by anyone.
type None struct{}

func (None) Kind() string { return "none" }
func (None) isRule()      {}

// TokenGate requires the identity to hold at least MinAmount of Mint.
type TokenGate struct {
	Mint      string
	MinAmount uint64
}

func (TokenGate) Kind() string { return "token" }
func (TokenGate) isRule()      {}

func (g TokenGate) String() string {
	return fmt.Sprintf("token(%s >= %d)", g.Mint, g.MinAmount)
}

// NFTGate requires the identity to own at least one item of Collection.
type NFTGate struct {
	Collection string
}

func (NFTGate) Kind() string { return "nft" }
func (NFTGate) isRule()      {}

func (g NFTGate) String() string {
	return fmt.Sprintf("nft(%s)", g.Collection)
}

// IsGated reports whether the rule actually restricts playback.
func IsGated(r Rule) bool {
	if r == nil {
		return false
	}
	_, ok := r.(None)
	return !ok
}
