/*
Package token implements the fungible token ledger used by the escrow.

Mints and token accounts are stored in the fixed SPL layouts. A token
account is owned by an address that authorizes transfers out of it,
either by signing the transaction or, for program derived addresses,
through a pda.Signer. Associated token accounts live at an address
derived from (owner, token program, mint) under the associated token
account program.
*/
package token
