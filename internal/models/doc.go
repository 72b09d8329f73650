// Package models defines the core domain models for the ledger.
//
// # Records
//
// Three collections are persisted, each as a whole:
//   - User: a person, identified by phone number
//   - Group: a named set of members, identified by a sequential integer
//   - Expense: an amount paid by one user on behalf of a group
//
// Groups are stored together with the last issued group ID (GroupBook), so the
// counter and the groups it numbered are always written in the same step.
//
// # Derived values
//
// Settlement, Balance and Transfer are computed from the records on demand and
// never stored.
//
// # Design Principles
//
// 1. **Whole-collection persistence**: storage reads and writes full collections
// 2. **References by key**: expenses and members point at users by phone and at groups by ID
// 3. **Stable wire names**: JSON tags match the documents already on disk
package models
