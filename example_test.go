package espalier_test

import (
	"fmt"
	"log"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
)

// ExampleNew demonstrates the core editing loop: add nodes, connect them,
// and step backwards and forwards through history.
func ExampleNew() {
	// Sequential ids keep the example output stable.
	next := 0
	doc := espalier.New(espalier.WithIDGenerator(func() string {
		next++
		return fmt.Sprintf("n%d", next)
	}))

	// 1. Place two nodes on the canvas
	trigger, err := doc.AddNode(domain.Node{
		Type:     "webhook",
		Title:    "On Order",
		Position: domain.Position{X: 40, Y: 120},
	})
	if err != nil {
		log.Fatal(err)
	}
	action, err := doc.AddNode(domain.Node{
		Type:     "email",
		Title:    "Send Receipt",
		Position: domain.Position{X: 360, Y: 120},
	})
	if err != nil {
		log.Fatal(err)
	}

	// 2. Wire them together
	if _, err := doc.Connect(trigger.ID, "out", action.ID, "in"); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("nodes=%d connections=%d\n", len(doc.Nodes()), len(doc.Connections()))

	// 3. Undo the connection, then bring it back
	doc.Undo()
	fmt.Printf("after undo: connections=%d\n", len(doc.Connections()))
	doc.Redo()
	fmt.Printf("after redo: connections=%d\n", len(doc.Connections()))

	// Output:
	// nodes=2 connections=1
	// after undo: connections=0
	// after redo: connections=1
}
