// Command demo wires two in-process replicas onto a runtime.Hub, applies
// concurrent local edits on each, and prints their converged text —
// generalizing the teacher's main/main.go single-replica DummyCRDT smoke
// test (and aggregat4-go-crdtnotes/cmd/demo's two-document convergence
// demo) into a runnable check of this repo's actual CRDT.
package main

import (
	"flag"
	"fmt"
	"log"

	"textweave/crdt"
	"textweave/runtime"
)

func main() {
	seed := flag.String("seed", "Hello", "text alice inserts before bob's edit")
	flag.Parse()

	hub := runtime.NewHub()

	var alice, bob *crdt.Replica
	alice = crdt.NewReplica(hub.Join("alice", receiverFunc(func(data []byte, meta any) error {
		return alice.ReceivePrimitive(data, meta)
	})))
	bob = crdt.NewReplica(hub.Join("bob", receiverFunc(func(data []byte, meta any) error {
		return bob.ReceivePrimitive(data, meta)
	})))

	if err := alice.Insert(0, *seed); err != nil {
		log.Fatalf("alice insert: %v", err)
	}
	fmt.Println("alice:", alice.String())
	fmt.Println("bob:  ", bob.String())

	if err := bob.Insert(bob.Length(), ", world"); err != nil {
		log.Fatalf("bob insert: %v", err)
	}
	if err := alice.Delete(0, 1); err != nil {
		log.Fatalf("alice delete: %v", err)
	}

	fmt.Println("after concurrent edits:")
	fmt.Println("alice:", alice.String())
	fmt.Println("bob:  ", bob.String())

	if err := alice.Validate(); err != nil {
		log.Fatalf("alice invariants: %v", err)
	}
	if err := bob.Validate(); err != nil {
		log.Fatalf("bob invariants: %v", err)
	}
	fmt.Printf("alice stats: %+v\n", alice.Stats())
}

// receiverFunc adapts a plain function to runtime.Receiver, standing in
// for the closures above needing to reference the very *crdt.Replica
// they're constructing.
type receiverFunc func(data []byte, meta any) error

func (f receiverFunc) ReceivePrimitive(data []byte, meta any) error { return f(data, meta) }
