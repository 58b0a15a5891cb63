/*
Package errors implements custom error interfaces.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary. x/escrow and x/job define
their own root errors.

To register a custom error use Register(code, description). For reusing
errors use ErrXyz.New and ErrXyz.Newf. The code is the ABCI error code, which
allows to distinguish types of errors on the client side and act
accordingly.

Create the error using ErrXyz.New("...") or errors.Wrap(err, "...") at the
point of creation to ensure a stacktrace is attached. If you wrap multiple
times, only the first wrap records the stacktrace. Do not declare a global
`var ErrFoo = errors.ErrHuman.New("foo")` or you will get a useless
stacktrace.

Once you have an error, you can use fmt.Printf/Sprintf to get more context

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
