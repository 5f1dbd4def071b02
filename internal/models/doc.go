// Package models defines the core domain models for Tabby.
//
// # Models
//
//   - Bill: one receipt-splitting session (items, people, shares, charges)
//   - Item: a line item on the receipt, priced as unit price × quantity
//   - Person: someone taking part in the split
//   - ItemShare: a weighted claim by a person on an item
//   - Charges: bill-level pools (tax, tip, discount, service fee) and how each is split
//
// All money values are decimal.Decimal so that splitting never accumulates
// binary floating point error.
//
// # Design Principles
//
//  1. Records reference each other by ID strings, never by pointer.
//  2. Validation lives next to the type it validates and fails with ErrValidation.
//  3. Models carry no behavior beyond construction, validation and derived prices.
package models
