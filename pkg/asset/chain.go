package asset

import (
	"fmt"
	"strings"
)

// ChainID identifies a chain by its bridge-assigned chain id.
type ChainID uint16

// Bridge chain ids of the networks the routing contracts are deployed on.
const (
	ChainSolana    ChainID = 1
	ChainEthereum  ChainID = 2
	ChainBSC       ChainID = 4
	ChainPolygon   ChainID = 5
	ChainAvalanche ChainID = 6
	ChainFantom    ChainID = 10
)

var chainNames = map[ChainID]string{
	ChainSolana:    "solana",
	ChainEthereum:  "ethereum",
	ChainBSC:       "bsc",
	ChainPolygon:   "polygon",
	ChainAvalanche: "avalanche",
	ChainFantom:    "fantom",
}

func (c ChainID) String() string {
	if name, ok := chainNames[c]; ok {
		return name
	}
	return fmt.Sprintf("chain-%d", uint16(c))
}

// ParseChainID accepts either a well-known chain name or a numeric id.
func ParseChainID(s string) (ChainID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for id, name := range chainNames {
		if name == s {
			return id, nil
		}
	}
	var n uint16
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n == 0 {
		return 0, fmt.Errorf("unknown chain %q", s)
	}
	return ChainID(n), nil
}

// Family groups chains that share an adapter implementation.
type Family string

const (
	// FamilyEVM is an account/contract chain with log-based events.
	FamilyEVM Family = "evm"
	// FamilyLedger is a program/instruction chain with log-line events.
	FamilyLedger Family = "ledger"
)

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	return f == FamilyEVM || f == FamilyLedger
}
