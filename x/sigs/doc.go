/*
Package sigs verifies the ed25519 signatures of a transaction and puts
the signing addresses in the context.

Every signature carries a sequence number that must match the one stored
for the signer and is incremented on success, so a signed transaction
cannot be replayed. The signed bytes are

	chainID | 0x00 | sequence (8 bytes big endian) | protobuf(msg)
*/
package sigs
