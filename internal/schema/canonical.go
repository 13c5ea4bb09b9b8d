package schema

// CanonicalType is the engine-neutral category a native SQL type maps into.
// Every dialect owns a total mapping from its native type names onto this set;
// anything it does not recognize falls back to TypeString.
type CanonicalType int

const (
	TypeString CanonicalType = iota
	TypeInt32
	TypeInt64
	TypeDecimal
	TypeDouble
	TypeBoolean
	TypeDateTime
	TypeDateTimeOffset
	TypeGuid
	TypeJSON
	TypeBinary
)

func (t CanonicalType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeDecimal:
		return "decimal"
	case TypeDouble:
		return "double"
	case TypeBoolean:
		return "boolean"
	case TypeDateTime:
		return "datetime"
	case TypeDateTimeOffset:
		return "datetimeoffset"
	case TypeGuid:
		return "guid"
	case TypeJSON:
		return "json"
	case TypeBinary:
		return "binary"
	default:
		return "string"
	}
}
