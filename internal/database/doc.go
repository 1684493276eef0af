// Package database owns the GORM connection, schema migration, and the
// idempotent seeding that runs on startup. Entity-specific queries live in
// the per-entity subpackages (users, catalog, cart, orders, reviews,
// wishlist, categories); shared domain error types live here so the
// subpackages and the HTTP layer agree on one taxonomy.
package database
