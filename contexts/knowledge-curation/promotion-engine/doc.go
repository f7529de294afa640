// Package promotionengine implements the promotion and consensus engine
// inside the knowledge-curation context.
//
// The module owns consensus vote lifecycle (cast/remove with reputation
// snapshots), methodology step completion, multi-criterion promotion
// eligibility scoring, the TTL eligibility cache, and the level transition
// state machine with its append-only promotion ledger. Business rules live in
// application/domain layers; infrastructure stays behind ports and adapters.
package promotionengine
