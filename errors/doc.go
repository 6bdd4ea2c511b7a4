/*
Package errors implements the error handling used across the custody
application.

Every error returned to a client should wrap one of the root errors
declared with Register. The registered code is what the ABCI response
carries, so that clients can tell apart, for example, an already used
escrow address from an insufficient balance.

Wrap an error with Wrap, Wrapf or ErrXyz.New at the point of creation to
attach a stack trace. Only the innermost wrap records the stack.

	%s is just the error message
	%+v is the message followed by the stack trace

Test for an error kind with ErrXyz.Is(err). Errors that do not wrap a
registered error are considered internal and are redacted in ABCI
responses unless the node runs in debug mode.
*/
package errors
