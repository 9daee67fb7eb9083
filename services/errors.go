package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError rejects a request before any persistence attempt.
// Fields maps a field path (e.g. "items[2].name") to the problem.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Discrepancy is one detected divergence between a tariff-computed
// amount and the amount currently stored on a task.
type Discrepancy struct {
	ItemIndex int    `json:"item_index"`
	TaskIndex int    `json:"task_index"`
	Side      string `json:"side"` // "revenue" | "cost"
	Stored    int64  `json:"stored"`
	Computed  int64  `json:"computed"`
}

// DiscrepancyError is a soft failure: the save is held until the
// caller re-submits with the discrepancies explicitly confirmed.
type DiscrepancyError struct {
	Discrepancies []Discrepancy
}

func (e *DiscrepancyError) Error() string {
	return fmt.Sprintf("%d price discrepancies require confirmation", len(e.Discrepancies))
}

// IneligibleError rejects a consolidation at the boundary, before
// any bill is created.
type IneligibleError struct {
	InvoiceID uint
	Reason    string
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("invoice %d not eligible for billing: %s", e.InvoiceID, e.Reason)
}
