/*
Package dsl provides a fluent Go builder for programmatically constructing
document snapshots.

It allows hosts to define graph documents using a type-safe builder pattern
instead of hand-writing JSON files. This is particularly useful for seeding
demo documents, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/espalier/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Node("hook", "webhook").
			Title("On Order").
			At(40, 120)

		b.Node("mail", "email").
			Title("Send Receipt").
			At(360, 120).
			Config("to", "{{order.email}}")

		b.Connect("hook", "out", "mail", "in")

		// The resulting snapshot can be loaded into a document
		snap := b.Snapshot()
		// ... pass snap to espalier.FromSnapshot(...)
	}
*/
package dsl
