package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MetaKey is the reserved top-level key carrying snapshot metadata.
const MetaKey = "_meta"

// SnapshotMeta describes when and how a snapshot was built.
type SnapshotMeta struct {
	AsOfLocal  string       `json:"asof_local"`
	AsOfMarket string       `json:"asof_market"`
	Session    SessionLabel `json:"session"`
	CadenceRTH string       `json:"cadence_rth"`
	CadenceETH string       `json:"cadence_eth"`
	Note       string       `json:"note"`
	Source     string       `json:"source"`
}

// Reversal is the confirmation verdict for one session window.
type Reversal struct {
	Confirmed bool   `json:"confirmed"`
	Detail    string `json:"detail"`
}

// WindowSignals are the derived metrics for one session window.
type WindowSignals struct {
	High     *float64 `json:"high"`
	PerfHigh *float64 `json:"perfHigh"`
	Reversal Reversal `json:"reversal"`
}

// ETHSignals is the extended-hours window. Available is false when no
// extended-hours series could be evaluated.
type ETHSignals struct {
	Available bool `json:"available"`
	WindowSignals
}

// SymbolMeta carries auxiliary per-symbol values and partial failures.
type SymbolMeta struct {
	PreviousClose        *float64 `json:"previous_close"`
	BaselineBootstrapped bool     `json:"baseline_bootstrapped,omitempty"`
	QuoteError           string   `json:"quote_error,omitempty"`
	SeriesError          string   `json:"series_error,omitempty"`
}

// SymbolSnapshot is one symbol's entry. When Error is set the entry
// encodes as {symbol, error} only.
type SymbolSnapshot struct {
	Symbol     string        `json:"symbol"`
	Name       string        `json:"name"`
	Baseline   *float64      `json:"baseline"`
	Last       *float64      `json:"last"`
	AsOfMarket string        `json:"asof_market"`
	AsOfLocal  string        `json:"asof_local"`
	Meta       SymbolMeta    `json:"meta"`
	RTH        WindowSignals `json:"rth"`
	ETH        ETHSignals    `json:"eth"`
	Error      string        `json:"-"`
}

type symbolSnapshotJSON SymbolSnapshot

type symbolErrorJSON struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// Failed reports whether the entry is an error marker.
func (s *SymbolSnapshot) Failed() bool { return s.Error != "" }

func (s SymbolSnapshot) MarshalJSON() ([]byte, error) {
	if s.Error != "" {
		return json.Marshal(symbolErrorJSON{Symbol: s.Symbol, Error: s.Error})
	}
	return json.Marshal(symbolSnapshotJSON(s))
}

func (s *SymbolSnapshot) UnmarshalJSON(b []byte) error {
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	var v symbolSnapshotJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = SymbolSnapshot(v)
	s.Error = probe.Error
	return nil
}

// Snapshot is the assembled view: metadata plus one entry per requested
// symbol. It encodes as a flat object with "_meta" first and symbols in
// request order.
type Snapshot struct {
	Meta    SnapshotMeta
	Symbols []string
	Entries map[string]*SymbolSnapshot
}

// NewSnapshot allocates a snapshot for the given symbols.
func NewSnapshot(meta SnapshotMeta, symbols []string) *Snapshot {
	return &Snapshot{
		Meta:    meta,
		Symbols: append([]string(nil), symbols...),
		Entries: make(map[string]*SymbolSnapshot, len(symbols)),
	}
}

// Entry returns the entry for sym, or nil.
func (s *Snapshot) Entry(sym string) *SymbolSnapshot {
	if s == nil {
		return nil
	}
	return s.Entries[sym]
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	meta, err := json.Marshal(s.Meta)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"` + MetaKey + `":`)
	buf.Write(meta)

	for _, sym := range s.Symbols {
		entry, ok := s.Entries[sym]
		if !ok || entry == nil {
			continue
		}
		key, err := json.Marshal(sym)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", sym, err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("snapshot: expected object")
	}

	s.Symbols = nil
	s.Entries = make(map[string]*SymbolSnapshot)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		if key == MetaKey {
			if err := dec.Decode(&s.Meta); err != nil {
				return fmt.Errorf("snapshot meta: %w", err)
			}
			continue
		}

		var entry SymbolSnapshot
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("snapshot %s: %w", key, err)
		}
		s.Symbols = append(s.Symbols, key)
		s.Entries[key] = &entry
	}

	_, err = dec.Token()
	return err
}
