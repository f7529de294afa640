// Package reputationservice derives objective user reputation inside the
// knowledge-curation context.
//
// Reputation is never independently mutable: it is always recomputed from
// contribution history aggregates owned by other subsystems. The promotion
// engine snapshots this score into vote weights at cast time.
package reputationservice
