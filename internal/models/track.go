package models

import (
	"time"

	"gorm.io/gorm"

	"wavepilot/internal/gate"
)

// Track is the immutable catalog unit. The playback core holds references
// only; the catalog service owns the rows.
type Track struct {
	gorm.Model

	Title  string `gorm:"index" json:"title"`
	Artist string `gorm:"index" json:"artist"`
	Album  string `json:"album"`

	// SourceURI locates the audio payload: "local:/path/file" or
	// "s3://bucket/key".
	SourceURI string `gorm:"uniqueIndex;not null" json:"source_uri"`

	// Duration is a hint in seconds; the source is authoritative.
	Duration float64 `json:"duration"`
	Format   string  `gorm:"size:10" json:"format"` // mp3, flac, etc.

	// Gating columns. GateKind is "", "token" or "nft"; the other columns
	// only carry meaning for their kind. Use Rule() outside persistence.
	GateKind       string `gorm:"size:10;index" json:"gate_kind"`
	GateMint       string `gorm:"size:64" json:"gate_mint,omitempty"`
	GateMinAmount  uint64 `json:"gate_min_amount,omitempty"`
	GateCollection string `gorm:"size:64" json:"gate_collection,omitempty"`
}

// Rule decodes the gating columns into the tagged variant. Unknown kinds
// decode to None so a bad row can never lock up the queue.
func (t *Track) Rule() gate.Rule {
	switch t.GateKind {
	case "token":
		return gate.TokenGate{Mint: t.GateMint, MinAmount: t.GateMinAmount}
	case "nft":
		return gate.NFTGate{Collection: t.GateCollection}
	default:
		return gate.None{}
	}
}

// PlayRecord is one listening session, created at track start and updated
// by periodic and terminal telemetry reports.
type PlayRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PlayID    string    `gorm:"uniqueIndex;size:36;not null" json:"play_id"`
	TrackID   uint      `gorm:"index" json:"track_id"`
	Identity  string    `gorm:"index;size:64" json:"identity"`
	Source    string    `gorm:"size:32" json:"source"` // where playback started: queue, search...
	Duration  float64   `json:"duration"`              // elapsed seconds, last reported
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preference is one persisted scalar player setting (shuffle, repeat,
// crossfade). Missing rows fall back to defaults.
type Preference struct {
	Key       string    `gorm:"primaryKey;size:32" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
