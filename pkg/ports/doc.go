/*
Package ports defines the interfaces between the Espalier core and its
adapters, following the Ports & Adapters (Hexagonal) pattern.

The core depends only on these contracts; concrete implementations live in
pkg/adapters (memory, file, redis) and in host applications.
*/
package ports
