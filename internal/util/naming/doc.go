// Package naming provides consistent naming functions for cluster resources.
//
// Isolation groups follow the pattern {cluster}-{role}. Nodes receive
// role names (hdpmaster1, hdpworker1..N) during configuration, and the
// fully qualified form appends the fixed cluster domain.
package naming
