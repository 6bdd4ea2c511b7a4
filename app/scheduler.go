package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"golang.org/x/sync/errgroup"
)

// LockFunc returns every account a transaction may read or write.
// Returning ok false means the accounts are unknown and the
// transaction must run alone.
type LockFunc func(tx custody.Tx) (accounts []custody.AccountMeta, ok bool)

// MsgAccounts is a LockFunc that trusts the accounts declared by the
// message, if it implements custody.AccountLister.
func MsgAccounts(tx custody.Tx) ([]custody.AccountMeta, bool) {
	msg, err := tx.GetMsg()
	if err != nil || msg == nil {
		return nil, false
	}
	l, ok := msg.(custody.AccountLister)
	if !ok {
		return nil, false
	}
	return l.Accounts(), true
}

// TxResult is the outcome of a single transaction processed by the
// Scheduler.
type TxResult struct {
	Result *custody.DeliverResult
	Err    error

	// escaped is set when no handler recovered the panic.
	escaped bool
}

// Scheduler executes a batch of transactions. Transactions are split
// into waves. No two transactions in the same wave write an account
// that the other reads or writes, so a wave is processed concurrently.
// Transactions that conflict keep their submission order.
type Scheduler struct {
	handler custody.Handler
	locks   LockFunc
}

// NewScheduler returns a scheduler dispatching to h. If locks is nil,
// MsgAccounts is used.
func NewScheduler(h custody.Handler, locks LockFunc) *Scheduler {
	if locks == nil {
		locks = MsgAccounts
	}
	return &Scheduler{handler: h, locks: locks}
}

// Deliver processes all transactions and returns one result for each,
// in the same order as txs. Every transaction runs on its own cache
// wrap over db. The caches are written back to db, wave by wave, in
// submission order, exactly as DeliverTx would have left the store. A
// failed transaction keeps only what the handler stack wrote outside of
// its savepoint (eg. the signer sequence). This holds for a panic
// recovered inside the stack as well. A panic that escapes the handler
// stack, which would stop DeliverTx, discards everything the
// transaction wrote.
//
// The returned error is only set when writing to db failed.
func (s *Scheduler) Deliver(ctx custody.Context, db custody.CacheableKVStore, txs []custody.Tx) ([]TxResult, error) {
	results := make([]TxResult, len(txs))
	for _, wave := range s.Waves(txs) {
		caches := make([]custody.KVCacheWrap, len(wave))

		var g errgroup.Group
		for n, i := range wave {
			n, i := n, i
			// db is only read while the wave runs. Each cache collects
			// its writes in a batch and gets its own free list.
			caches[n] = store.NewBTreeCacheWrap(db, db.NewBatch(), nil)
			g.Go(func() error {
				results[i] = s.deliverOne(ctx, caches[n], txs[i])
				return nil
			})
		}
		_ = g.Wait()

		for n, i := range wave {
			if results[i].escaped {
				caches[n].Discard()
				continue
			}
			if err := caches[n].Write(); err != nil {
				return nil, errors.Wrap(err, "write back")
			}
		}
	}
	return results, nil
}

func (s *Scheduler) deliverOne(ctx custody.Context, db custody.KVStore, tx custody.Tx) (out TxResult) {
	defer func() {
		if p := recover(); p != nil {
			out = TxResult{Err: errors.Wrapf(errors.ErrPanic, "%v", p), escaped: true}
		}
	}()
	res, err := s.handler.Deliver(ctx, db, tx)
	return TxResult{Result: res, Err: err}
}

// Waves returns the indexes of txs grouped into waves. Waves must be
// executed one after another. Within a wave indexes are ascending.
func (s *Scheduler) Waves(txs []custody.Tx) [][]int {
	var (
		waves [][]int
		// wave index after which an account was last written or read
		lastWrite = make(map[string]int)
		lastRead  = make(map[string]int)
		// no tx may be scheduled before barrier
		barrier int
	)

	for i, tx := range txs {
		accounts, ok := s.locks(tx)

		w := barrier
		if !ok {
			// runs after everything before and before everything after
			w = len(waves)
			barrier = w + 1
		}
		for _, a := range accounts {
			key := string(a.Address)
			if last, ok := lastWrite[key]; ok && last+1 > w {
				w = last + 1
			}
			if !a.Writable {
				continue
			}
			if last, ok := lastRead[key]; ok && last+1 > w {
				w = last + 1
			}
		}

		for _, a := range accounts {
			key := string(a.Address)
			if a.Writable {
				if last, ok := lastWrite[key]; !ok || w > last {
					lastWrite[key] = w
				}
			} else {
				if last, ok := lastRead[key]; !ok || w > last {
					lastRead[key] = w
				}
			}
		}

		for len(waves) <= w {
			waves = append(waves, nil)
		}
		waves[w] = append(waves[w], i)
	}
	return waves
}
