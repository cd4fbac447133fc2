package main

import (
	"encoding/json"
	"io"

	"github.com/okian/momentum/internal/domain/momentum"
	"github.com/okian/momentum/internal/replay"
)

// pushOutput is what push prints once the server has applied the match.
type pushOutput struct {
	Push   replay.PushStats `json:"push"`
	Report momentum.Report  `json:"report"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
