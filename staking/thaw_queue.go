// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/staking/shares"
)

// thawQueue implements the shared FIFO thaw machinery used by both
// provision thawing and undelegation. Requests are stored off-struct,
// keyed by opaque ids, and linked head to tail.
type thawQueue struct {
	store *storageLayer
}

// enqueue converts tokens into thawing shares on pool and appends a
// request releasing at until. The owning entry's queue links are
// updated in memory; the caller persists the entry.
func (q *thawQueue) enqueue(
	queue *ThawQueue,
	owner, verifier meridian.Address,
	pool *shares.Pool,
	tokens *uint256.Int,
	until uint64,
) (meridian.Bytes32, error) {
	if queue.Count >= meridian.MaxThawRequests {
		return meridian.Bytes32{}, ErrTooManyThawRequests
	}
	thawShares, err := pool.Issue(pool.Tokens, tokens)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	id, err := q.store.nextRequestID(owner, verifier)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	if err := pool.Mint(tokens, thawShares); err != nil {
		return meridian.Bytes32{}, err
	}
	if queue.Count == 0 {
		queue.Head = id
	} else {
		tail, err := q.store.getThawRequest(queue.Tail)
		if err != nil {
			return meridian.Bytes32{}, err
		}
		if tail.IsEmpty() {
			return meridian.Bytes32{}, errors.New("thaw queue corrupted: missing tail request")
		}
		tail.Next = id
		if err := q.store.setThawRequest(queue.Tail, tail); err != nil {
			return meridian.Bytes32{}, err
		}
	}
	queue.Tail = id
	queue.Count++
	if err := q.store.setThawRequest(id, &ThawRequest{
		Shares:       thawShares,
		ThawingUntil: until,
	}); err != nil {
		return meridian.Bytes32{}, err
	}
	return id, nil
}

// fulfill consumes exactly tokens worth of matured requests from the
// queue head. Requests are taken strictly in order and the front request
// is split when it covers more than the remainder. An unmatured request
// at the head blocks fulfillment even if enough value is queued behind it.
// Request storage is only written once the full amount is covered, so a
// failed fulfillment leaves no trace.
func (q *thawQueue) fulfill(queue *ThawQueue, pool *shares.Pool, tokens *uint256.Int, now uint64) error {
	var (
		remaining = tokens.Clone()
		consumed  []meridian.Bytes32
		splitID   meridian.Bytes32
		split     *ThawRequest
	)
	for queue.Count > 0 && !remaining.IsZero() {
		head, err := q.store.getThawRequest(queue.Head)
		if err != nil {
			return err
		}
		if head.IsEmpty() {
			return errors.New("thaw queue corrupted: missing head request")
		}
		if now < head.ThawingUntil {
			break
		}
		value, err := pool.Redeem(pool.Tokens, head.Shares)
		if err != nil {
			return err
		}
		if value.Gt(remaining) {
			// split the head request, burning shares pro-rata so the
			// rest of it keeps its value
			burn, overflow := new(uint256.Int).MulDivOverflow(head.Shares, remaining, value)
			if overflow {
				return shares.ErrArithmeticOverflow
			}
			if err := pool.Burn(remaining, burn); err != nil {
				return err
			}
			head.Shares = new(uint256.Int).Sub(head.Shares, burn)
			splitID, split = queue.Head, head
			remaining.Clear()
			break
		}
		if err := pool.Burn(value, head.Shares); err != nil {
			return err
		}
		remaining.Sub(remaining, value)
		consumed = append(consumed, queue.Head)
		queue.Head = head.Next
		queue.Count--
		if queue.Count == 0 {
			queue.Head = meridian.Bytes32{}
			queue.Tail = meridian.Bytes32{}
		}
	}
	if !remaining.IsZero() {
		return ErrInsufficientThawedTokens
	}
	for _, id := range consumed {
		if err := q.store.deleteThawRequest(id); err != nil {
			return err
		}
	}
	if split != nil {
		return q.store.setThawRequest(splitID, split)
	}
	return nil
}

// collect drains all matured requests from the queue head and returns
// their combined token value plus the consumed request ids. With
// ignoreTime set, maturity is not checked and the whole queue drains.
// Queue links and the pool mutate in memory only; the caller removes
// the consumed requests once all of its own guards have passed.
func (q *thawQueue) collect(queue *ThawQueue, pool *shares.Pool, now uint64, ignoreTime bool) (*uint256.Int, []meridian.Bytes32, error) {
	var (
		total    = uint256.NewInt(0)
		consumed []meridian.Bytes32
	)
	for queue.Count > 0 {
		head, err := q.store.getThawRequest(queue.Head)
		if err != nil {
			return nil, nil, err
		}
		if head.IsEmpty() {
			return nil, nil, errors.New("thaw queue corrupted: missing head request")
		}
		if !ignoreTime && now < head.ThawingUntil {
			break
		}
		value, err := pool.Redeem(pool.Tokens, head.Shares)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Burn(value, head.Shares); err != nil {
			return nil, nil, err
		}
		if _, overflow := total.AddOverflow(total, value); overflow {
			return nil, nil, shares.ErrArithmeticOverflow
		}
		consumed = append(consumed, queue.Head)
		queue.Head = head.Next
		queue.Count--
		if queue.Count == 0 {
			queue.Head = meridian.Bytes32{}
			queue.Tail = meridian.Bytes32{}
		}
	}
	return total, consumed, nil
}

// remove deletes consumed requests from the store.
func (q *thawQueue) remove(ids []meridian.Bytes32) error {
	for _, id := range ids {
		if err := q.store.deleteThawRequest(id); err != nil {
			return err
		}
	}
	return nil
}
