package runtime

import "testing"

type recorder struct {
	received [][]byte
	metas    []Meta
}

func (r *recorder) ReceivePrimitive(data []byte, meta any) error {
	r.received = append(r.received, data)
	r.metas = append(r.metas, meta.(Meta))
	return nil
}

func TestLocalFansOutToOtherReplicasOnly(t *testing.T) {
	hub := NewHub()
	aliceRecv := &recorder{}
	bobRecv := &recorder{}
	alice := hub.Join("alice", aliceRecv)
	hub.Join("bob", bobRecv)

	alice.SendPrimitive([]byte("hello"))

	if len(aliceRecv.received) != 0 {
		t.Errorf("alice should not receive its own broadcast, got %d messages", len(aliceRecv.received))
	}
	if len(bobRecv.received) != 1 || string(bobRecv.received[0]) != "hello" {
		t.Fatalf("bob should have received alice's message, got %v", bobRecv.received)
	}
	if bobRecv.metas[0].From != "alice" || bobRecv.metas[0].Seq != 1 {
		t.Errorf("meta = %+v, want {From:alice Seq:1}", bobRecv.metas[0])
	}
}

func TestLocalSeqIsPerSenderMonotonic(t *testing.T) {
	hub := NewHub()
	bobRecv := &recorder{}
	alice := hub.Join("alice", &recorder{})
	hub.Join("bob", bobRecv)

	alice.SendPrimitive([]byte("one"))
	alice.SendPrimitive([]byte("two"))

	if len(bobRecv.metas) != 2 {
		t.Fatalf("bob should have received 2 messages, got %d", len(bobRecv.metas))
	}
	if bobRecv.metas[0].Seq != 1 || bobRecv.metas[1].Seq != 2 {
		t.Errorf("sequence numbers = %d, %d, want 1, 2", bobRecv.metas[0].Seq, bobRecv.metas[1].Seq)
	}
}

func TestLocalGetUIDIsUniquePerReplica(t *testing.T) {
	hub := NewHub()
	alice := hub.Join("alice", &recorder{})
	bob := hub.Join("bob", &recorder{})

	ids := map[string]bool{}
	for i := 0; i < 10; i++ {
		ids[string(alice.GetUID())] = true
		ids[string(bob.GetUID())] = true
	}
	if len(ids) != 20 {
		t.Errorf("expected 20 unique ids, got %d", len(ids))
	}
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	bobRecv := &recorder{}
	alice := hub.Join("alice", &recorder{})
	hub.Join("bob", bobRecv)

	hub.Leave("bob")
	alice.SendPrimitive([]byte("hello"))

	if len(bobRecv.received) != 0 {
		t.Errorf("bob left the hub and should not receive further messages, got %d", len(bobRecv.received))
	}
}
