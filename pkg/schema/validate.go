package schema

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// ValidateConfiguration checks a node's configuration blob against the
// declared fields of its type. Unknown keys are tolerated (hosts may stash
// private data); declared fields must parse as their type. Missing fields
// without a default are reported as required.
// Returns an error with all validation failures found.
func ValidateConfiguration(nt *NodeType, cfg map[string]string) error {
	if nt == nil || len(nt.Fields) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error
	for _, f := range nt.Fields {
		value, exists := cfg[f.Key]
		if !exists {
			if f.Default == "" {
				errs = append(errs, &ValidationError{Key: f.Key, Reason: "required"})
			}
			continue
		}

		typ, err := ParseType(f.Type)
		if err != nil {
			errs = append(errs, &ValidationError{Key: f.Key, Reason: err.Error()})
			continue
		}
		if len(f.Options) > 0 {
			typ = Enum(f.Options...)
		}

		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: f.Key, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// CheckPorts verifies that sourcePortID on the source type can be wired to
// targetPortID on the target type: the ports must exist, carry the right
// directions, and agree on kind (an empty kind on either side is a wildcard).
// Failures wrap domain.ErrIncompatiblePort.
func CheckPorts(source *NodeType, sourcePortID string, target *NodeType, targetPortID string) error {
	src, ok := source.Port(sourcePortID)
	if !ok {
		return fmt.Errorf("%w: type %q has no port %q", domain.ErrIncompatiblePort, source.ID, sourcePortID)
	}
	tgt, ok := target.Port(targetPortID)
	if !ok {
		return fmt.Errorf("%w: type %q has no port %q", domain.ErrIncompatiblePort, target.ID, targetPortID)
	}

	if src.Direction != domain.PortSource {
		return fmt.Errorf("%w: port %q on %q is not a source", domain.ErrIncompatiblePort, sourcePortID, source.ID)
	}
	if tgt.Direction != domain.PortTarget {
		return fmt.Errorf("%w: port %q on %q is not a target", domain.ErrIncompatiblePort, targetPortID, target.ID)
	}

	if src.Kind != "" && tgt.Kind != "" && src.Kind != tgt.Kind {
		return fmt.Errorf("%w: kind %q does not match %q", domain.ErrIncompatiblePort, src.Kind, tgt.Kind)
	}
	return nil
}
