package repdata

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dotdelta/repdata/utils"
	"github.com/google/uuid"
	"github.com/learn-decentralized-systems/toyqueue"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// Relay fans extracted deltas out between in-process replicas of one
// logical instance. It is the host-runtime seam: real deployments ship
// the same encoded records over their own transport, the relay only
// keeps the broadcast-and-apply loop exercisable end to end.
//
// The relay itself is safe for concurrent use; each replica's RDT is
// still single-threaded property of its owner.
type Relay struct {
	opts     RelayOptions
	replicas *xsync.MapOf[string, *Replica]
	stats    RelayStats
}

type RelayOptions struct {
	Logger utils.Logger
	// MaxInbox bounds queued records per replica; a replica that
	// never syncs eventually refuses deltas rather than grow forever.
	MaxInbox int
}

func (o *RelayOptions) SetDefaults() {
	if o.Logger == nil {
		o.Logger = utils.NewDefaultLogger(slog.LevelInfo)
	}
	if o.MaxInbox == 0 {
		o.MaxInbox = 1 << 12
	}
}

type RelayStats struct {
	Extracted atomic.Uint64
	Applied   atomic.Uint64
	WireBytes atomic.Uint64
	Replicas  atomic.Int64
}

func NewRelay(opts RelayOptions) *Relay {
	opts.SetDefaults()
	return &Relay{
		opts:     opts,
		replicas: xsync.NewMapOf[string, *Replica](),
	}
}

func (r *Relay) Stats() *RelayStats { return &r.stats }

// Join registers a replica holding the given RDT instance.
func (r *Relay) Join(data RDT) *Replica {
	rep := &Replica{
		id:    uuid.NewString(),
		data:  data,
		relay: r,
	}
	r.replicas.Store(rep.id, rep)
	r.stats.Replicas.Add(1)
	r.opts.Logger.Debug("replica joined", "id", rep.id, "kind", data.Kind())
	return rep
}

func (r *Relay) Leave(rep *Replica) {
	if _, ok := r.replicas.LoadAndDelete(rep.id); ok {
		r.stats.Replicas.Add(-1)
		r.opts.Logger.Debug("replica left", "id", rep.id)
	}
}

func (r *Relay) broadcast(from *Replica, wire []byte) {
	r.replicas.Range(func(id string, to *Replica) bool {
		if id == from.id {
			return true
		}
		if err := to.Drain(toyqueue.Records{wire}); err != nil {
			r.opts.Logger.Warn("replica inbox refused a delta",
				"id", id, "err", err)
		}
		return true
	})
}

// Replica is one member of a relay: an RDT plus an inbox of encoded
// deltas from the other members.
type Replica struct {
	id    string
	data  RDT
	relay *Relay

	lock  sync.Mutex
	inbox toyqueue.Records
}

func (rep *Replica) ID() string { return rep.id }

func (rep *Replica) Data() RDT { return rep.data }

// Drain accepts encoded delta records, the toyqueue convention.
func (rep *Replica) Drain(recs toyqueue.Records) error {
	rep.lock.Lock()
	defer rep.lock.Unlock()
	if len(rep.inbox)+len(recs) > rep.relay.opts.MaxInbox {
		return toyqueue.ErrWouldBlock
	}
	rep.inbox = append(rep.inbox, recs...)
	return nil
}

// Commit drains the local delta accumulator and broadcasts the wire
// form to every other replica. No pending change, no traffic — unless
// initial forces a bootstrap delta out.
func (rep *Replica) Commit(initial bool) error {
	d := rep.data.GetAndResetDelta(initial)
	if d == nil {
		return nil
	}
	wire := d.AppendTLV(nil)
	rep.relay.stats.Extracted.Add(1)
	rep.relay.stats.WireBytes.Add(uint64(len(wire)))
	rep.relay.broadcast(rep, wire)
	return nil
}

// Sync applies every queued delta and reports how many.
func (rep *Replica) Sync() (n int, err error) {
	rep.lock.Lock()
	recs := rep.inbox
	rep.inbox = nil
	rep.lock.Unlock()
	for _, rec := range recs {
		for len(rec) > 0 {
			var d Delta
			d, rec, err = ParseDelta(rec)
			if err != nil {
				return n, errors.Wrapf(err, "replica %s", rep.id)
			}
			if err = rep.data.ApplyDelta(d); err != nil {
				return n, errors.Wrapf(err, "replica %s", rep.id)
			}
			rep.relay.stats.Applied.Add(1)
			n++
		}
	}
	return n, nil
}
