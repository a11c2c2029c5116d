// Package magetasks provides organized build tasks for the rbuild project.
//
// This package contains all the build, test, lint, and quality tasks
// used by the Magefile, plus the Native tasks that drive a built rbuild
// against the native project checked out alongside it.
package magetasks
