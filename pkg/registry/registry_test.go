package registry_test

import (
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triggerType() schema.NodeType {
	return schema.NodeType{
		ID: "trigger",
		Ports: []schema.Port{
			{ID: "out", Direction: domain.PortSource, Kind: "flow"},
		},
	}
}

func actionType() schema.NodeType {
	return schema.NodeType{
		ID: "action",
		Ports: []schema.Port{
			{ID: "in", Direction: domain.PortTarget, Kind: "flow"},
			{ID: "out", Direction: domain.PortSource, Kind: "flow"},
		},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := registry.New()
	r.Register(triggerType())

	nt, ok := r.Lookup("trigger")
	require.True(t, ok)
	assert.Equal(t, "trigger", nt.ID)

	_, ok = r.Lookup("ghost")
	assert.False(t, ok)

	// Re-registering overwrites
	updated := triggerType()
	updated.DisplayName = "Webhook Trigger"
	r.Register(updated)
	nt, _ = r.Lookup("trigger")
	assert.Equal(t, "Webhook Trigger", nt.DisplayName)
}

func TestRegistry_TypesSorted(t *testing.T) {
	r := registry.New()
	r.Register(schema.NodeType{ID: "zebra"})
	r.Register(schema.NodeType{ID: "alpha"})
	r.Register(schema.NodeType{ID: "mid"})

	types := r.Types()
	require.Len(t, types, 3)
	assert.Equal(t, "alpha", types[0].ID)
	assert.Equal(t, "mid", types[1].ID)
	assert.Equal(t, "zebra", types[2].ID)
}

func TestRegistry_FromCatalog(t *testing.T) {
	cat := &schema.Catalog{Types: []schema.NodeType{triggerType(), actionType()}}
	r := registry.FromCatalog(cat)

	_, ok := r.Lookup("trigger")
	assert.True(t, ok)
	_, ok = r.Lookup("action")
	assert.True(t, ok)
}

func TestRegistry_ValidateConnection(t *testing.T) {
	r := registry.New()
	r.Register(triggerType())
	r.Register(actionType())

	src := domain.Node{ID: "n1", Type: "trigger"}
	tgt := domain.Node{ID: "n2", Type: "action"}

	assert.NoError(t, r.ValidateConnection(src, "out", tgt, "in"))

	// Bad port pairing is rejected
	err := r.ValidateConnection(src, "out", tgt, "out")
	assert.ErrorIs(t, err, domain.ErrIncompatiblePort)

	// Unknown node types cannot be validated
	unknown := domain.Node{ID: "n3", Type: "mystery"}
	err = r.ValidateConnection(unknown, "out", tgt, "in")
	assert.ErrorIs(t, err, domain.ErrIncompatiblePort)
}
