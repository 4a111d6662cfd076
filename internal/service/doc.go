// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the store
// interfaces to fulfill application features.
//
// The central component is the SessionManager, which owns all study-session
// state transitions: lazy session creation, flashcard progress tracking,
// card-order persistence and self-healing, and quiz scoring. Services
// receive their dependencies through constructor injection and apply
// transactional boundaries (store.RunInTransaction) when an operation spans
// multiple stores, but never depend on a specific database implementation.
package service
