// Package panicerr turns a goroutine's abnormal exit (panic or
// runtime.Goexit) into a plain error, so a CLI entry point can report a
// runaway compile or interpret call as a diagnostic instead of a crash.
package panicerr

// Recover runs f in a new goroutine and converts any panic or
// runtime.Goexit into a non-nil error return instead of taking down the
// calling goroutine.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExitError(name, errch)
		defer recoverPanicError(name, errch)
		errch <- f()
	}()
	return <-errch
}
