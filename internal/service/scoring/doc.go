// Package scoring implements contextual importance scoring for inbox messages.
//
// The scorer converts heterogeneous, partially-trustworthy signals (sender
// behavioral history, explicit trust designations, platform classification,
// content heuristics) into a bounded importance score, a confidence estimate
// and a suggested action. Classification and scoring are deterministic and
// pure; the only I/O happens in the signal provider lookups and the optional
// deep-escalation path.
//
// The service depends on provider interfaces defined in this package and
// should never import from api/. Provider implementations live in
// repository/postgres/, repository/memory/ and repository/rediscache/.
package scoring
