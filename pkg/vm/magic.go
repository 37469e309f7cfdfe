package vm

import (
	"sort"

	"github.com/dop251/goja/unistring"
)

// MagicString identifies an interned engine string. Ids are ordered so that
// comparing ids orders the underlying strings (ASCII order), which lets
// built-in property tables be binary-searched by id.
type MagicString uint16

const (
	MagicNone MagicString = iota // not a magic string

	MagicInfinity
	MagicNaN
	MagicObject
	MagicTypeError
	MagicConfigurable
	MagicConstructor
	MagicCreate
	MagicDefineProperties
	MagicDefineProperty
	MagicEnumerable
	MagicFreeze
	MagicGet
	MagicGetOwnPropertyDescriptor
	MagicGetOwnPropertyNames
	MagicGetPrototypeOf
	MagicHasOwnProperty
	MagicIsExtensible
	MagicIsFinite
	MagicIsFrozen
	MagicIsNaN
	MagicIsPrototypeOf
	MagicIsSealed
	MagicKeys
	MagicLength
	MagicMessage
	MagicName
	MagicPreventExtensions
	MagicPropertyIsEnumerable
	MagicPrototype
	MagicSeal
	MagicSet
	MagicToLocaleString
	MagicToString
	MagicUndefined
	MagicValue
	MagicValueOf
	MagicWritable

	magicCount
)

var magicStrings = [magicCount]string{
	MagicNone:                     "",
	MagicInfinity:                 "Infinity",
	MagicNaN:                      "NaN",
	MagicObject:                   "Object",
	MagicTypeError:                "TypeError",
	MagicConfigurable:             "configurable",
	MagicConstructor:              "constructor",
	MagicCreate:                   "create",
	MagicDefineProperties:         "defineProperties",
	MagicDefineProperty:           "defineProperty",
	MagicEnumerable:               "enumerable",
	MagicFreeze:                   "freeze",
	MagicGet:                      "get",
	MagicGetOwnPropertyDescriptor: "getOwnPropertyDescriptor",
	MagicGetOwnPropertyNames:      "getOwnPropertyNames",
	MagicGetPrototypeOf:           "getPrototypeOf",
	MagicHasOwnProperty:           "hasOwnProperty",
	MagicIsExtensible:             "isExtensible",
	MagicIsFinite:                 "isFinite",
	MagicIsFrozen:                 "isFrozen",
	MagicIsNaN:                    "isNaN",
	MagicIsPrototypeOf:            "isPrototypeOf",
	MagicIsSealed:                 "isSealed",
	MagicKeys:                     "keys",
	MagicLength:                   "length",
	MagicMessage:                  "message",
	MagicName:                     "name",
	MagicPreventExtensions:        "preventExtensions",
	MagicPropertyIsEnumerable:     "propertyIsEnumerable",
	MagicPrototype:                "prototype",
	MagicSeal:                     "seal",
	MagicSet:                      "set",
	MagicToLocaleString:           "toLocaleString",
	MagicToString:                 "toString",
	MagicUndefined:                "undefined",
	MagicValue:                    "value",
	MagicValueOf:                  "valueOf",
	MagicWritable:                 "writable",
}

// String returns the text of the magic string.
func (m MagicString) String() string {
	if m >= magicCount {
		return "<invalid magic>"
	}
	return magicStrings[m]
}

// LookupMagic returns the magic id for s, or MagicNone.
func LookupMagic(s string) MagicString {
	ids := magicStrings[1:]
	i := sort.SearchStrings(ids, s)
	if i < len(ids) && ids[i] == s {
		return MagicString(i + 1)
	}
	return MagicNone
}

// Name is a property name. Names whose text is a magic string always carry
// the magic id, so equality can be decided either way.
type Name struct {
	str   unistring.String
	magic MagicString
}

// NewName builds a property name from Go text.
func NewName(s string) Name {
	if m := LookupMagic(s); m != MagicNone {
		return Name{str: unistring.String(s), magic: m}
	}
	return Name{str: unistring.NewFromString(s)}
}

// Name returns the property name for an interned id.
func (m MagicString) Name() Name {
	return Name{str: unistring.String(magicStrings[m]), magic: m}
}

func (n Name) Magic() (MagicString, bool) { return n.magic, n.magic != MagicNone }
func (n Name) String() string             { return n.str.String() }
func (n Name) Equal(o Name) bool {
	if n.magic != MagicNone || o.magic != MagicNone {
		return n.magic == o.magic
	}
	return n.str == o.str
}

// searchMagic binary-searches an ascending table of magic ids.
// Returns -1 when id is not present.
func searchMagic(table []MagicString, id MagicString) int {
	lo, hi := 0, len(table)-1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		switch {
		case table[mid] == id:
			return mid
		case table[mid] < id:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}
