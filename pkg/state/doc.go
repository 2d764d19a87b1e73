/*
Package state implements burrow's container record store: one plain
directory per container under a state root, named by host PID, holding
a record.json and a newline-delimited command file.

This is deliberately not an embedded database. An operator locked out
of burrow's own tooling -- a crashed host, a corrupted binary, a
container stuck in an unkillable state -- can still read, edit, or
rm -rf a container's directory with coreutils alone.

# Layout

	<StateRoot>/
	  4211/
	    record.json   # types.Record, JSON
	    command       # argv, one argument per line
	  4288/
	    record.json
	    command

List never reaps stale entries for a PID that is no longer running:
that decision belongs to the lifecycle manager, which can tell a
frozen container apart from a dead one.
*/
package state
