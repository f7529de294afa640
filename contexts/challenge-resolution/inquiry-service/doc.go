// Package inquiryservice implements formal inquiry evaluation inside the
// challenge-resolution context.
//
// The module owns the confidence-ceiling invariant: an inquiry's stored
// confidence can never exceed the credibility of its weakest referenced
// evidence node, enforced inside the same transaction as the write. Community
// sentiment on inquiries lives in a separate vote ledger that never touches
// the evidence-based confidence score.
package inquiryservice
