package models

// CoachResult is the stored output of the narrative summarizer.
type CoachResult struct {
	AsOfLocal  string       `json:"asof_local"`
	AsOfMarket string       `json:"asof_market"`
	Session    SessionLabel `json:"session"`
	Symbols    []string     `json:"symbols"`
	Model      string       `json:"model"`
	Text       []string     `json:"text"`
}

// CoachRefresh is the outcome of a refresh request. Fresh is true when the
// stored result was recent enough to be returned without regenerating.
type CoachRefresh struct {
	OK     bool         `json:"ok"`
	Fresh  bool         `json:"fresh"`
	Stored bool         `json:"stored"`
	Coach  *CoachResult `json:"coach"`
}

// SnapshotBuilt is published after a fresh snapshot has been persisted.
type SnapshotBuilt struct {
	Key     string       `json:"key"`
	Session SessionLabel `json:"session"`
	Symbols []string     `json:"symbols"`
	BuiltAt int64        `json:"built_at"`
}
