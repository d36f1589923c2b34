package cmd

const DESCRIPTION = `
Knot runs a JavaScript file on an embedded engine and keeps it alive
until every timer it scheduled has fired or been cleared. Scripts get
setTimeout, setInterval, their clear counterparts, console, require and
the Knot global namespace.
`

const (
	RunDescription = `The run command executes a script file and drives the
event loop until no timer, interval or queued callback is left.
With --watch the script is started again every time the file
changes on disk.

Example:
        knot main.js
                OR
        knot run --watch main.js

`
	EvalDescription = `The eval command executes the given source text as the
entry script.

Example:
        knot eval "setTimeout(() => Knot.log('done'), 10)"

`
)
