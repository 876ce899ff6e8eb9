// Package manager connects script storage to the rule engine.
//
// The engine compiles text it is handed and never performs I/O. Manager is
// the surrounding glue: it reads scripts from a store.ScriptStore, compiles
// them, writes scripts back only after they compile, and keeps the engine in
// step with a directory of scripts.
//
// # Basic Usage
//
//	st := store.NewDirStore("./rules", logger)
//	mgr, err := manager.New(eng, st, manager.DefaultConfig(), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := mgr.LoadAll(ctx)
//	if err != nil {
//	    // Some scripts failed; the rest are loaded
//	    log.Printf("load: %v", err)
//	}
//	fmt.Printf("Loaded %d scripts\n", len(report.Loaded))
//
// # Hot Reload
//
// Watch follows the org, branch and user directories of a DirStore with
// fsnotify. Changed files are recompiled after a debounce interval and
// removed files evict their rule set. A Scheduler adds a cron-driven full
// resync for changes the watcher cannot see, such as edits on network
// file systems.
//
//	sched := manager.NewScheduler(mgr)
//	if err := sched.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	go mgr.Watch(ctx)
//
// # Error Recovery
//
// A script that fails to compile never replaces the active rule set for its
// scope. Load and LoadAll report the failure as a *CompileError with every
// diagnostic, and Failures lists the scopes currently running on a stale
// rule set.
package manager
