// Package store provides script storage adapters.
//
// The rule engine itself never touches storage; the surrounding system loads
// a script with GetScript, compiles it, and only saves it with SaveScript
// when compilation succeeds. MemoryStore serves tests and embedding;
// DirStore keeps one file per scope under a root directory and is what the
// command line tool and the file watcher use.
package store
