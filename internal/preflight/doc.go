// Package preflight provides readiness checks for the binaries, services, and
// filesystem paths FastScribe depends on.
//
// The CLI "fastscribe doctor" command runs RunAll and CheckSystemDeps and
// renders the results. Checks for backends missing from backends.order are
// skipped.
package preflight
