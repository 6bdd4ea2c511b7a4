/*
Package escrow implements a two party token escrow held by a program
derived address.

A maker deposits tokens of one mint into a vault, the associated token
account of the escrow record address. The record address is derived from
("seed", seed, maker, mint) under the escrow program id and has no
private key. Either a taker settles the escrow and receives the vault
balance, or the maker refunds it. Both operations sign for the record
address by reproducing the derivation seeds, empty and close the vault,
and close the record. Rent of both accounts returns to the maker.

There is no timeout. An escrow stays claimable until it is settled or
refunded, and a new seed is required for another escrow on the same
maker and mint.
*/
package escrow
