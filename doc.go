/*
Package custody defines the interfaces used throughout the app, such as
storage, transactions, handlers and addresses. It also contains helpers
to work with context, accounts and abci.

Extensions live under x/. The escrow extension (x/escrow) is the reason
this application exists: a maker locks tokens in a vault owned by a
program-derived address and either a taker settles it or the maker
takes it back. Everything else is the runtime that extension needs.
*/
package custody
