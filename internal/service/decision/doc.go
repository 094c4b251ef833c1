// Package decision implements the decision audit trail and review lifecycle.
//
// Every automated judgment the engine makes is recorded as an append-only
// decision row whose initial status is derived purely from confidence. Users
// review each decision exactly once: approval and correction are terminal
// transitions, and corrections feed the learning hook.
//
// The service layer depends on the Repository interface defined in this
// package and should never import from api/. Repository implementations live
// in repository/postgres/ and repository/memory/.
package decision
