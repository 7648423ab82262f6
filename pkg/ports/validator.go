package ports

import "github.com/aretw0/espalier/pkg/domain"

// ConnectionValidator is the schema collaborator consulted by Connect.
// It decides whether a source port may be wired to a target port, based on
// node-type metadata the core does not own.
//
// Implementations return nil to accept, or an error wrapping
// domain.ErrIncompatiblePort to reject the pair.
type ConnectionValidator interface {
	ValidateConnection(source domain.Node, sourcePortID string, target domain.Node, targetPortID string) error
}

// ConnectionValidatorFunc adapts a function to the ConnectionValidator interface.
type ConnectionValidatorFunc func(source domain.Node, sourcePortID string, target domain.Node, targetPortID string) error

// ValidateConnection implements ConnectionValidator.
func (f ConnectionValidatorFunc) ValidateConnection(source domain.Node, sourcePortID string, target domain.Node, targetPortID string) error {
	return f(source, sourcePortID, target, targetPortID)
}
