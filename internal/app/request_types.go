package app

import "github.com/arikb/bloxs/internal/core"

// DraftRequest is the input for creating a draft purchase invoice.
type DraftRequest struct {
	FileName string
	Content  []byte
}

// SettlementRequest is the input for an owner settlement batch. Zero Year or Month
// means the current one. Rows are read from File when File is set.
type SettlementRequest struct {
	Year  int                  `json:"year,omitempty" jsonschema_description:"Settlement year, defaults to the current year"`
	Month int                  `json:"month,omitempty" jsonschema:"minimum=1,maximum=12" jsonschema_description:"Settlement month 1-12, defaults to the current month"`
	Rows  []core.SettlementRow `json:"rows" jsonschema:"required,minItems=1"`
	File  string               `json:"-"`
}
