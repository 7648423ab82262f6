/*
Package domain contains the core domain models for the Espalier graph document.

It defines the fundamental entities of a node/workflow canvas, such as Nodes,
Connections, the Viewport transform, and the serializable document Snapshot.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Node: an instance placed on the canvas (type tag, title, position, size, configuration).
  - Connection: a directed edge between two node ports.
  - Viewport: the pan/zoom camera transform (not part of document undo history).
  - Snapshot: the JSON-serializable structural state of a document.
  - Event: a change notification emitted after every mutation.
*/
package domain
