// Package repositories implements SQLite persistence for the dumper client.
//
// Key Implementations:
//   - [SettingsRepository] : key-value preferences; satisfies the theme package's Store
//   - [SessionRepository] : stream session history with outcome tracking
//
// Sequence numbers provide stable, human-readable ordering (session #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
