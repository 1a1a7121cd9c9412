package persistence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/value"
)

// FromNodes builds a Driver snapshot from the live node table, keyed by
// homeID, for WriteConfig (spec.md §4.10).
func FromNodes(homeID uint32, nodes []*node.Node) *Driver {
	d := &Driver{HomeID: fmt.Sprintf("0x%08x", homeID)}
	for _, n := range nodes {
		pn := Node{
			ID:         n.NodeID,
			Generic:    n.Generic,
			Specific:   n.Specific,
			QueryStage: n.Stage().String(),
		}
		for classID, support := range n.Classes() {
			pc := CommandClass{ID: classID, Version: support.Version, Instances: support.Instances}
			for _, v := range n.Values.All() {
				if v.ID.CommandClass() != classID {
					continue
				}
				current, isSet := v.Current()
				if !isSet {
					continue
				}
				pc.Values = append(pc.Values, Value{
					Genre:    v.ID.Genre().String(),
					Instance: v.ID.Instance(),
					Index:    v.ID.Index(),
					Type:     v.ID.Type().String(),
					Label:    v.Label,
					Units:    v.Units,
					ReadOnly: v.ReadOnly,
					Value:    formatValue(current),
				})
			}
			pn.CommandClasses = append(pn.CommandClasses, pc)
		}
		d.Nodes = append(d.Nodes, pn)
	}
	return d
}

// ParseHomeID parses the "0x%08x"-formatted HomeId FromNodes writes back
// into the uint32 the in-memory model keys everything on.
func ParseHomeID(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("persistence: parse home_id %q: %w", s, err)
	}
	return uint32(n), nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ApplyCacheLoad seeds n's command-class support table and value registry
// from a persisted snapshot, letting discovery treat whatever is restored
// as satisfying the CacheLoad stage (spec.md §4.10). Each restored value
// goes through OnValueChanged on a freshly added Value, whose
// never-set-before path commits it immediately as an IsSet reading, so no
// confirmation refresh is involved.
func ApplyCacheLoad(n *node.Node, pn Node) {
	n.Generic = pn.Generic
	n.Specific = pn.Specific
	for _, pc := range pn.CommandClasses {
		n.AddClass(pc.ID, pc.Version, pc.Instances)
		for _, pv := range pc.Values {
			id := value.NewID(n.HomeID, n.NodeID, parseGenre(pv.Genre), pc.ID, pv.Instance, pv.Index, parseType(pv.Type))
			v := n.Values.Add(value.New(id, pv.Label, pv.Units))
			v.ReadOnly = pv.ReadOnly
			v.OnValueChanged(parseValue(parseType(pv.Type), pv.Value))
		}
	}
}

func parseGenre(s string) value.Genre {
	switch s {
	case "User":
		return value.GenreUser
	case "Config":
		return value.GenreConfig
	case "System":
		return value.GenreSystem
	default:
		return value.GenreBasic
	}
}

func parseType(s string) value.Type {
	switch s {
	case "Byte":
		return value.TypeByte
	case "Short":
		return value.TypeShort
	case "Int":
		return value.TypeInt
	case "Decimal":
		return value.TypeDecimal
	case "String":
		return value.TypeString
	case "List":
		return value.TypeList
	case "Schedule":
		return value.TypeSchedule
	case "Button":
		return value.TypeButton
	case "Raw":
		return value.TypeRaw
	default:
		return value.TypeBool
	}
}

func parseValue(t value.Type, s string) any {
	switch t {
	case value.TypeBool:
		return s == "true"
	case value.TypeDecimal:
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case value.TypeByte, value.TypeShort, value.TypeInt:
		i, _ := strconv.Atoi(s)
		return i
	default:
		return s
	}
}
