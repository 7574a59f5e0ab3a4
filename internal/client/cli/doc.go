// Package cli wires the clipkeeper daemon together and runs it.
//
// App owns the lifecycle: it opens the local database, restores the stored
// session and sync cursor, hydrates the history and then runs the capture
// pipeline, the retention sweeper, the history mirror and the IPC server
// until the process is told to stop. With -console an interactive prompt
// is attached to stdin as well.
package cli
