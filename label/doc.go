// Package label defines the fixed catalogue of content-category labels that
// gate which library sections an authenticated user may see, and a compact
// bitmask [Set] for carrying a user's labels inside a session record.
//
// # Canonical order
//
// The eleven categories always enumerate in the same fixed order regardless of
// how entitlements are stored: Computer Science, Philosophy, Religion, Social
// Sciences, Language, Science, Technology, Arts, Literature, History,
// Geography. [Set.Labels] and [Set.Names] return labels in this order.
//
// # Architecture boundaries
//
// This package owns the label enumeration and the mask encoding only. It does
// NOT decide which labels a user holds — that is the entitlement store's job —
// and it does NOT import any other authgate package.
package label
