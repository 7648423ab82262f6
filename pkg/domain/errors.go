package domain

import "errors"

var (
	// ErrNodeNotFound is returned when a referenced node id is absent.
	ErrNodeNotFound = errors.New("node not found")

	// ErrConnectionNotFound is returned when a referenced connection id is absent.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrDocumentNotFound is returned when a document id cannot be found in a store.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidDocumentID is returned by stores for document ids they refuse
	// to address, such as ids containing path separators.
	ErrInvalidDocumentID = errors.New("invalid document id")

	// ErrDuplicateID is returned on an id collision during insert.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrIncompatiblePort is returned when a connection is rejected by the
	// schema's port compatibility rules.
	ErrIncompatiblePort = errors.New("incompatible port")

	// ErrInvalidSnapshot is returned when a snapshot fails structural
	// validation (dangling endpoints, duplicate ids, ...).
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
