package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx and CheckTx handlers to the storage and
// query functionality of StoreApp
type BaseApp struct {
	*StoreApp
	decoder   custody.TxDecoder
	handler   custody.Handler
	scheduler *Scheduler
	debug     bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application. The scheduler
// dispatches to the same handler and is used by DeliverBatch.
func NewBaseApp(
	store *StoreApp,
	decoder custody.TxDecoder,
	handler custody.Handler,
	locks LockFunc,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp:  store,
		decoder:   decoder,
		handler:   handler,
		scheduler: NewScheduler(handler, locks),
		debug:     debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return custody.DeliverTxError(err, b.debug)
	}

	ctx := custody.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", custody.GetPath(tx))

	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return custody.DeliverOrError(res, err, b.debug)
}

// DeliverBatch delivers a list of transactions as DeliverTx would, in
// submission order, except that transactions touching disjoint
// accounts are executed in parallel. Responses are returned in the
// order of the input.
func (b BaseApp) DeliverBatch(txs [][]byte) []abci.ResponseDeliverTx {
	out := make([]abci.ResponseDeliverTx, len(txs))

	decoded := make([]custody.Tx, 0, len(txs))
	idx := make([]int, 0, len(txs))
	for i, raw := range txs {
		tx, err := b.loadTx(raw)
		if err != nil {
			out[i] = custody.DeliverTxError(err, b.debug)
			continue
		}
		decoded = append(decoded, tx)
		idx = append(idx, i)
	}

	ctx := custody.WithLogInfo(b.BlockContext(), "call", "deliver_batch")
	results, err := b.scheduler.Deliver(ctx, b.DeliverStore(), decoded)
	if err != nil {
		// The store failed while writing back, this cannot be recovered.
		panic(err)
	}
	for n, r := range results {
		out[idx[n]] = custody.DeliverOrError(r.Result, r.Err, b.debug)
	}
	return out
}

// CheckTx - ABCI - dispatches to the handler
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return custody.CheckTxError(err, b.debug)
	}

	ctx := custody.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", custody.GetPath(tx))

	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return custody.CheckOrError(res, err, b.debug)
}

// loadTx calls the decoder, and capture any panics
func (b BaseApp) loadTx(txBytes []byte) (tx custody.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}
