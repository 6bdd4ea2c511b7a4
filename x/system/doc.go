/*
Package system keeps the lamport balances of accounts and the space they
allocate.

Creating an account moves the rent exempt minimum for its space from a
payer into the new account. Closing an account moves every lamport it
holds to a destination and deletes it. An address that holds an account
cannot be created again until it is closed.

A signer moves lamports out of its own account with a "system/transfer"
message.
*/
package system
