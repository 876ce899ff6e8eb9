// Package health provides liveness and readiness probes for the
// long-running `rulescript watch` process.
//
// Liveness (/health) only reports that the process is serving requests.
// Readiness (/ready) runs every registered check and answers 503 while any
// of them fails, for example before the first full load of the script
// store or while a script on disk does not compile.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("load", health.LoadCheck(mgr))
//	checker.RegisterCheck("scripts", health.ScriptsCheck(mgr))
//	checker.Register(mux, version, commit, buildDate)
package health
