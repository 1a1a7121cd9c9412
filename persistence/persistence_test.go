package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/value"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	d := &Driver{
		HomeID: "0x11223344",
		Nodes: []Node{
			{
				ID:         5,
				Generic:    0x10,
				Specific:   0x01,
				QueryStage: "Complete",
				CommandClasses: []CommandClass{
					{
						ID:        0x25,
						Version:   1,
						Instances: 1,
						Values: []Value{
							{Genre: "Basic", Instance: 1, Index: 0, Type: "Bool", Label: "Switch", ReadOnly: false, Value: "true"},
						},
					},
				},
			},
		},
	}

	body, err := Marshal(d)
	require.NoError(t, err)

	got, err := Unmarshal(body)
	require.NoError(t, err)

	assert.Equal(t, d.HomeID, got.HomeID)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, uint8(5), got.Nodes[0].ID)
	require.Len(t, got.Nodes[0].CommandClasses, 1)
	assert.Equal(t, uint8(0x25), got.Nodes[0].CommandClasses[0].ID)
	require.Len(t, got.Nodes[0].CommandClasses[0].Values, 1)
	assert.Equal(t, "true", got.Nodes[0].CommandClasses[0].Values[0].Value)
}

func TestReadFileMissingReturnsNilNil(t *testing.T) {
	d, err := ReadFile("/nonexistent/path/snapshot.xml")
	assert.NoError(t, err)
	assert.Nil(t, d)
}

func TestFromNodesAndApplyCacheLoadRoundTrip(t *testing.T) {
	n := node.New(0x11223344, 5, nil)
	n.AddClass(0x25, 1, 1)
	id := value.NewID(n.HomeID, n.NodeID, value.GenreBasic, 0x25, 1, 0, value.TypeBool)
	v := n.Values.Add(value.New(id, "Switch", ""))
	v.OnValueChanged(true)

	d := FromNodes(n.HomeID, []*node.Node{n})
	require.Len(t, d.Nodes, 1)
	require.Len(t, d.Nodes[0].CommandClasses, 1)
	require.Len(t, d.Nodes[0].CommandClasses[0].Values, 1)
	assert.Equal(t, "true", d.Nodes[0].CommandClasses[0].Values[0].Value)

	restored := node.New(0x11223344, 5, nil)
	ApplyCacheLoad(restored, d.Nodes[0])

	support, ok := restored.Class(0x25)
	require.True(t, ok)
	assert.Equal(t, uint8(1), support.Version)

	rv, ok := restored.Values.Get(id)
	require.True(t, ok)
	current, isSet := rv.Current()
	assert.True(t, isSet)
	assert.Equal(t, true, current)
}
