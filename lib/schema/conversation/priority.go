// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package conversation

import "fmt"

// Priority is the operator triage priority: 0=low, 1=medium, 2=high,
// 3=urgent. Ordered: higher values sort first in the list.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityMedium Priority = 1
	PriorityHigh   Priority = 2
	PriorityUrgent Priority = 3
)

// Valid reports whether the priority is in the recognized 0-3 range.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityUrgent
}

// Label returns the operator-facing label. Out-of-range values render
// as the numeric value rather than failing.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Baixa"
	case PriorityMedium:
		return "Média"
	case PriorityHigh:
		return "Alta"
	case PriorityUrgent:
		return "Urgente"
	default:
		return fmt.Sprintf("P%d", int(p))
	}
}

// Priorities returns all recognized priorities in ascending order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}
