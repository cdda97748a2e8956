package solana

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/memo"
)

var (
	addOutputPattern = regexp.MustCompile(`^Program log: propeller_add output_amount: (\d+)`)
	sequencePattern  = regexp.MustCompile(`^Program log: Sequence: (\d+)`)
)

// ParseAddOutput extracts the canonical amount a pool add produced from its
// transaction logs.
func ParseAddOutput(logs []string) (*big.Int, error) {
	for _, line := range logs {
		m := addOutputPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out, ok := new(big.Int).SetString(m[1], 10)
		if !ok {
			break
		}
		return out, nil
	}
	return nil, chain.ErrConversionOutputUnparseable
}

// ParseSequence extracts the bridge message sequence from transfer logs.
func ParseSequence(logs []string) (uint64, error) {
	for _, line := range logs {
		m := sequencePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		seq, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid sequence %q: %w", m[1], err)
		}
		return seq, nil
	}
	return 0, ErrSequenceNotFound
}

// LogEvent is one transaction's logs as delivered by the log subscription.
type LogEvent struct {
	Signature string
	Failed    bool
	Logs      []string
}

// matchOutcome classifies a log event against a memo.
type matchOutcome int

const (
	noMatch matchOutcome = iota
	interimMatch
	finalMatch
)

// classify reports whether ev belongs to m and whether it is the final
// routing step. With no markers configured the first memo match is final.
func classify(ev LogEvent, m memo.Memo, markers []string) matchOutcome {
	if ev.Failed || !m.FoundInLogs(ev.Logs) {
		return noMatch
	}
	if len(markers) == 0 {
		return finalMatch
	}
	for _, line := range ev.Logs {
		for _, marker := range markers {
			if strings.Contains(line, marker) {
				return finalMatch
			}
		}
	}
	return interimMatch
}
