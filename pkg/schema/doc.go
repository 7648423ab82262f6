/*
Package schema describes node types: their display metadata, configuration
fields, and ports. It is the host-supplied collaborator the document core
consults when validating connections. Schema-derived data is never stored
inside the instance model.

A NodeType declares Fields (key, display name, value type, ordering, help
text) and Ports (direction plus an optional kind tag used for compatibility).
Catalogs of node types can be loaded from YAML, so hosts can extend the open
set of types without modifying the core.

Configuration values are raw strings in the document; field types validate
that the strings parse as the declared type (int, float, bool, enum, ...).
*/
package schema
