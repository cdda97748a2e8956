package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/propellerswap/propeller/pkg/swap"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSnapshot(w io.Writer, output string, s swap.Snapshot) error {
	if output == "json" {
		return writeJSON(w, s)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "swap     %s\n", s.ID)
	fmt.Fprintf(&b, "route    %s\n", s.Route)
	fmt.Fprintf(&b, "memo     %s\n", s.Memo)
	fmt.Fprintf(&b, "state    %s\n", s.State)
	if s.Sequence != nil {
		fmt.Fprintf(&b, "sequence %d\n", *s.Sequence)
	}
	for _, r := range s.Records {
		fmt.Fprintf(&b, "tx       %s %s\n", r.Chain, r.TxID)
	}
	if s.State == swap.StateFailed {
		fmt.Fprintf(&b, "failed   in %s: %s\n", s.FailedIn, s.Error)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
