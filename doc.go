/*
Package espalier is an embeddable graph document engine for node/workflow
canvas editors. It owns the authoritative in-memory graph (nodes, connections,
selection, viewport) and the undo/redo command history, while the host UI owns
rendering, hit-testing, and theming.

# Concept

Espalier treats the canvas as a document: every edit goes through the
document's mutation API, which validates first (no partial mutation on
failure), records an inverse entry on the undo stack, and notifies observers.
This Hexagonal Architecture keeps the core free of UI and persistence
concerns; adapters (HTTP, MCP, memory/file/redis stores) live at the edges.

# Key Features

  - Undoable edits: every document mutation is a reversible history entry;
    batch removals undo as one unit.
  - Cascading deletes: removing a node removes its connections, and a single
    undo restores both.
  - Schema collaboration: port compatibility is delegated to a pluggable
    validator (see pkg/registry); schema metadata is never cached into nodes.
  - Transient UI state: selection and viewport mutate freely outside the
    undo history.
  - JSON snapshots: Serialize/Load round-trip the full structural state.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/espalier"
		"github.com/aretw0/espalier/pkg/domain"
	)

	func main() {
		doc := espalier.New()

		n1, err := doc.AddNode(domain.Node{Type: "action", Title: "Fetch"})
		if err != nil {
			log.Fatal(err)
		}
		n2, _ := doc.AddNode(domain.Node{Type: "output", Position: domain.Position{X: 240}})

		if _, err := doc.Connect(n1.ID, "out", n2.ID, "in"); err != nil {
			log.Fatal(err)
		}

		doc.Undo() // disconnects again
		fmt.Println(len(doc.Connections()), doc.CanRedo())
	}
*/
package espalier
