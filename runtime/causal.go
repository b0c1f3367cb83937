package runtime

import "fmt"

// VersionVector tracks, per sender replica tag, the sequence number of the
// last message accepted from that sender, so a Runtime can detect gaps and
// duplicates before handing a message to its Receiver. Adapted from the
// teacher's crdt.VersionVector, generalized from its replicaID+
// operationOffset ID pair to the (replica tag, Seq) pair carried in Meta.
type VersionVector struct {
	counters map[string]uint64
}

// NewVersionVector returns an empty vector with no replicas registered.
func NewVersionVector() *VersionVector {
	return &VersionVector{counters: make(map[string]uint64)}
}

// RegisterReplica adds replica to the vector at sequence 0, the sequence
// before any message it sends has arrived. Re-registering an already known
// replica is a no-op, unlike the teacher's version which errored: a
// Runtime may see the same replica tag rejoin after a reconnect.
func (v *VersionVector) RegisterReplica(replica string) {
	if _, ok := v.counters[replica]; !ok {
		v.counters[replica] = 0
	}
}

// ContainsReplicaID reports whether replica has been registered.
func (v *VersionVector) ContainsReplicaID(replica string) bool {
	_, ok := v.counters[replica]
	return ok
}

// IsNext reports whether seq is the immediate successor of the last
// message accepted from replica, i.e. whether accepting it now preserves
// FIFO order for that sender. An unregistered replica is implicitly
// expected to start at sequence 1.
func (v *VersionVector) IsNext(replica string, seq uint64) bool {
	return v.counters[replica]+1 == seq
}

// IsDuplicate reports whether seq has already been accepted from replica.
func (v *VersionVector) IsDuplicate(replica string, seq uint64) bool {
	current, ok := v.counters[replica]
	return ok && seq <= current
}

// Advance records seq as accepted from replica. It returns an error if seq
// is not IsNext, the same FIFO-violation guard as the teacher's
// UpdateOperation.
func (v *VersionVector) Advance(replica string, seq uint64) error {
	if !v.IsNext(replica, seq) {
		return fmt.Errorf("runtime: out-of-order delivery from %q: have seq %d, got %d", replica, v.counters[replica], seq)
	}
	v.RegisterReplica(replica)
	v.counters[replica] = seq
	return nil
}

// Copy returns an independent copy of v.
func (v *VersionVector) Copy() *VersionVector {
	out := NewVersionVector()
	for k, c := range v.counters {
		out.counters[k] = c
	}
	return out
}

// LessOrEqual reports whether every replica counter in v is at most the
// corresponding counter in other, i.e. whether v happened-before-or-with
// other. A replica known to v but not to other fails the comparison.
func (v *VersionVector) LessOrEqual(other *VersionVector) bool {
	for replica, c := range v.counters {
		oc, ok := other.counters[replica]
		if !ok || c > oc {
			return false
		}
	}
	return true
}
