// Package cache stores compiled rule sets per scope, keyed by scope type and
// id and tagged with a HighwayHash of the script text.
//
// Compiling unchanged text is a cache hit and does not reparse. A failed
// compile never removes the previous good entry. When two requests with
// different text race for one scope, the one that arrived last wins; the
// other still receives its compiled set, flagged Superseded.
package cache
