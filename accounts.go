package custody

// AccountMeta declares one account a message touches.
type AccountMeta struct {
	Address  Address
	Writable bool
}

// Writable declares an account that the message may modify.
func Writable(a Address) AccountMeta {
	return AccountMeta{Address: a, Writable: true}
}

// ReadOnly declares an account that the message only reads.
func ReadOnly(a Address) AccountMeta {
	return AccountMeta{Address: a}
}

// AccountLister is implemented by messages that declare every account
// they read or write. Transactions with disjoint writable sets never
// interact and may be executed in parallel.
type AccountLister interface {
	Accounts() []AccountMeta
}
