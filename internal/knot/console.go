package knot

import (
	"fmt"
	"io"
)

// printer routes goja_nodejs console output: log to stdout, warn and
// error to stderr.
type printer struct {
	out io.Writer
	err io.Writer
}

func (p *printer) Log(s string)   { fmt.Fprintln(p.out, s) }
func (p *printer) Warn(s string)  { fmt.Fprintln(p.err, s) }
func (p *printer) Error(s string) { fmt.Fprintln(p.err, s) }
