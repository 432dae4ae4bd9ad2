// Package store is a SQLite host for finders.
//
// It keeps entities in the pages table, one value table per field
// (field_<name>), a field registry and the content languages, and it
// implements every collaborator a finder needs:
//
//   - Query runs composed statements (finder.Executor)
//   - ResolveIDs turns selectors into ordered ids (finder.Resolver)
//   - Registry classifies field names (finder.Registry)
//   - SelectLanguage picks the current language (finder.LanguageSource)
//   - LoadEntity and LoadEntities load full entities (finder.EntityLoader)
//
// # Field tables
//
// Every field table has the columns pages_id, data and sort. Fields with
// language values add one data<languageID> column per non-default
// language; file fields may declare extra columns such as description.
// The data columns have NUMERIC affinity, so numbers compare as numbers.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks
//   - foreign_keys=ON
package store
