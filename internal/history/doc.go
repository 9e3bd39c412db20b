// Package history records device power transitions for PowerCore.
//
// Every transition attempted by the power engine, successful or failed,
// is persisted to SQLite so operators can audit why a device changed
// state and how long transitions take. The package also bridges the
// engine's event stream into the repository without blocking the
// engine's emit path.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────┐
//	│                   Transition History                    │
//	│                                                         │
//	│  ┌───────────────┐   ┌───────────────┐   ┌───────────┐  │
//	│  │     Sink      │   │  Repository   │   │  SQLite   │  │
//	│  │   (sink.go)   │──▶│(repository.go)│──▶│(sqlite.go)│  │
//	│  │               │   │               │   │           │  │
//	│  │ • buffered    │   │ • Record/List │   │ • inserts │  │
//	│  │ • non-blocking│   │ • interface   │   │ • queries │  │
//	│  └───────────────┘   └───────────────┘   └───────────┘  │
//	│          ▲                                              │
//	└──────────│──────────────────────────────────────────────┘
//	           │
//	   power engine events
//
// # Usage
//
//	repo := history.NewSQLiteRepository(db.DB)
//	engine.Notify(history.NewSink(repo, logger))
//
//	entries, err := repo.List(ctx, "uart0", 50)
package history
