package value

// Type is the Value variant tag (spec.md §3): Bool | Byte | Short | Int |
// Decimal | String | List | Schedule | Button | Raw.
type Type uint8

const (
	TypeBool Type = iota
	TypeByte
	TypeShort
	TypeInt
	TypeDecimal
	TypeString
	TypeList
	TypeSchedule
	TypeButton
	TypeRaw
)

// typeName mirrors the teacher's TypeID.String() lookup-table idiom
// (asdu/identifier.go), scaled down to the ten Value variants.
var typeName = [...]string{
	TypeBool:     "Bool",
	TypeByte:     "Byte",
	TypeShort:    "Short",
	TypeInt:      "Int",
	TypeDecimal:  "Decimal",
	TypeString:   "String",
	TypeList:     "List",
	TypeSchedule: "Schedule",
	TypeButton:   "Button",
	TypeRaw:      "Raw",
}

func (t Type) String() string {
	if int(t) < len(typeName) {
		return typeName[t]
	}
	return "Unknown"
}
