package curve

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/types/xerrors"
)

type priceRequest struct {
	idx         int
	supply      fxnum.FxNum
	onCompleted func(int, fxnum.FxNum, bool)
}

// pricePreparer evaluates spot prices of the continuous curve on a fixed set of workers.
type pricePreparer struct {
	*sync.WaitGroup

	curve     *ContinuousExponentialCurve
	chDone    chan struct{}
	chReqs    []chan *priceRequest
	reqCount  int
	failedIdx int64 // atomic, -1 if none
}

func newPricePreparer(curve *ContinuousExponentialCurve, workers int) *pricePreparer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pp := &pricePreparer{
		WaitGroup: &sync.WaitGroup{},
		curve:     curve,
		chDone:    make(chan struct{}),
		chReqs:    make([]chan *priceRequest, workers),
		failedIdx: -1,
	}
	for i := range pp.chReqs {
		pp.chReqs[i] = make(chan *priceRequest, 1024)
		go priceRoutine(pp.curve, pp.chReqs[i], pp.chDone)
	}
	return pp
}

func (pp *pricePreparer) stop() {
	close(pp.chDone)
}

func (pp *pricePreparer) add(ctx context.Context, supply fxnum.FxNum, onCompleted func(int, fxnum.FxNum, bool)) bool {
	req := &priceRequest{
		idx:    pp.reqCount,
		supply: supply,
		onCompleted: func(idx int, price fxnum.FxNum, ok bool) {
			if !ok {
				atomic.CompareAndSwapInt64(&pp.failedIdx, -1, int64(idx))
			}
			onCompleted(idx, price, ok)
			pp.WaitGroup.Done()
		},
	}
	pp.reqCount++

	pp.WaitGroup.Add(1)
	select {
	case pp.chReqs[req.idx%len(pp.chReqs)] <- req:
		return true
	case <-ctx.Done():
		pp.WaitGroup.Done()
		return false
	}
}

func priceRoutine(curve *ContinuousExponentialCurve, chReqs chan *priceRequest, done chan struct{}) {
STOP:
	for {
		select {
		case req := <-chReqs:
			price, ok := curve.SpotPriceAtSupply(req.supply)
			req.onCompleted(req.idx, price, ok)
		case <-done:
			break STOP
		}
	}
}

// GenerateTables samples the continuous curve at every step boundary in [0, (count-1)*stepSize]
// and accumulates the cost of each complete step. Prices are computed on `workers` goroutines
// (GOMAXPROCS when workers <= 0).
func GenerateTables(ctx context.Context, curve *ContinuousExponentialCurve, stepSize uint64, count, workers int) (*Tables, xerrors.XError) {
	if stepSize == 0 || count <= 0 {
		return nil, xerrors.ErrInvalidTable.Wrapf("step size %d, count %d", stepSize, count)
	}
	if uint64(count-1) > ^uint64(0)/stepSize {
		return nil, xerrors.ErrInvalidTable.Wrapf("supply overflows: step size %d, count %d", stepSize, count)
	}

	prices := make([]fxnum.FxNum, count)

	pp := newPricePreparer(curve, workers)
	defer pp.stop()

	for i := 0; i < count; i++ {
		onCompleted := func(idx int, price fxnum.FxNum, ok bool) {
			// each index is written by exactly one worker
			prices[idx] = price
		}
		if !pp.add(ctx, fxnum.FromUint64(uint64(i)*stepSize), onCompleted) {
			break
		}
	}
	pp.Wait()

	if err := ctx.Err(); err != nil {
		return nil, xerrors.From(err)
	}
	if idx := atomic.LoadInt64(&pp.failedIdx); idx >= 0 {
		return nil, xerrors.ErrCurveOverflow.Wrapf("spot price at supply %d", uint64(idx)*stepSize)
	}

	step := fxnum.FromUint64(stepSize)
	cumulative := make([]fxnum.FxNum, count)
	for i := 0; i+1 < count; i++ {
		stepCost, ok := prices[i].Mul(step)
		if !ok {
			return nil, xerrors.ErrCurveOverflow.Wrapf("cost of step %d", i)
		}
		if cumulative[i+1], ok = cumulative[i].Add(stepCost); !ok {
			return nil, xerrors.ErrCurveOverflow.Wrapf("cumulative value at step %d", i+1)
		}
	}

	return NewTables(stepSize, prices, cumulative)
}

// VerifyTables cross-checks every entry of t against the continuous curve with zero tolerance.
// The cumulative invariant is already enforced by NewTables.
func VerifyTables(ctx context.Context, t *Tables, curve *ContinuousExponentialCurve, workers int) xerrors.XError {
	var mismatch int64 = -1

	pp := newPricePreparer(curve, workers)
	defer pp.stop()

	for i := 0; i < t.Len(); i++ {
		onCompleted := func(idx int, price fxnum.FxNum, ok bool) {
			if ok && !price.Equal(t.prices[idx]) {
				atomic.CompareAndSwapInt64(&mismatch, -1, int64(idx))
			}
		}
		if !pp.add(ctx, fxnum.FromUint64(uint64(i)*t.stepSize), onCompleted) {
			break
		}
	}
	pp.Wait()

	if err := ctx.Err(); err != nil {
		return xerrors.From(err)
	}
	if idx := atomic.LoadInt64(&pp.failedIdx); idx >= 0 {
		return xerrors.ErrCurveOverflow.Wrapf("spot price at supply %d", uint64(idx)*t.stepSize)
	}
	if idx := atomic.LoadInt64(&mismatch); idx >= 0 {
		expected, _ := curve.SpotPriceAtSupply(fxnum.FromUint64(uint64(idx) * t.stepSize))
		return xerrors.ErrInvalidTable.Wrapf("price[%d] is %s, the curve gives %s", idx, t.prices[idx], expected)
	}
	return nil
}
