// Package models defines domain entities and persistence interfaces for the stacks library client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs mirroring the remote library API
//   - [Identity] : The authenticated principal, one explicit schema applied at the remote-call boundary
//   - [Book], [Author], [User], [Loan] : Catalog entities
//   - [Stats] : Aggregate counts for the dashboard
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CatalogSnapshot] : A locally cached catalog payload for offline dashboard and export
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
