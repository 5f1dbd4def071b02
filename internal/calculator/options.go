package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/tabby/internal/models"
)

var (
	// ErrReference reports a share that points at an item or person missing
	// from the bill. It usually means upstream data lost integrity.
	ErrReference = errors.New("dangling reference")

	// ErrEmptyParticipants reports a bill with something to pay and nobody to pay it.
	ErrEmptyParticipants = errors.New("no participants to split among")
)

// UnassignedPolicy decides how items nobody claimed affect proportional splits.
type UnassignedPolicy string

const (
	// UnassignedInBase keeps unassigned item prices in the proportional base.
	// Their slice of every proportional pool stays unallocated.
	UnassignedInBase UnassignedPolicy = "in_base"

	// UnassignedExcludeFromBase divides proportional pools over the assigned
	// subtotal only, so those pools are always fully allocated.
	UnassignedExcludeFromBase UnassignedPolicy = "exclude_from_base"
)

// ReferenceMode decides what happens to shares with dangling references.
type ReferenceMode string

const (
	// ReferencesStrict fails with ErrReference.
	ReferencesStrict ReferenceMode = "strict"
	// ReferencesLenient drops the share and counts it in BillTotals.IgnoredShares.
	ReferencesLenient ReferenceMode = "lenient"
)

// Options are the policy flags of ComputeTotals. Both fields must be set.
type Options struct {
	Unassigned UnassignedPolicy
	References ReferenceMode
}

// DefaultOptions returns strict references with unassigned items kept in the base.
func DefaultOptions() Options {
	return Options{
		Unassigned: UnassignedInBase,
		References: ReferencesStrict,
	}
}

// Validate fails when a policy is unset or unknown.
func (o Options) Validate() error {
	switch o.Unassigned {
	case UnassignedInBase, UnassignedExcludeFromBase:
	default:
		return fmt.Errorf("%w: unknown unassigned policy %q", models.ErrValidation, string(o.Unassigned))
	}
	switch o.References {
	case ReferencesStrict, ReferencesLenient:
	default:
		return fmt.Errorf("%w: unknown reference mode %q", models.ErrValidation, string(o.References))
	}
	return nil
}

// ParseUnassignedPolicy parses "in_base" or "exclude_from_base".
func ParseUnassignedPolicy(s string) (UnassignedPolicy, error) {
	p := UnassignedPolicy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case UnassignedInBase, UnassignedExcludeFromBase:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown unassigned policy %q", models.ErrValidation, s)
}

// ParseReferenceMode parses "strict" or "lenient".
func ParseReferenceMode(s string) (ReferenceMode, error) {
	m := ReferenceMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ReferencesStrict, ReferencesLenient:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown reference mode %q", models.ErrValidation, s)
}
