package models

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var nullDecimalType = reflect.TypeOf(decimal.NullDecimal{})

// Schema returns the JSON schema of InvoiceRecord. Amounts are numbers or null.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == nullDecimalType {
				return &jsonschema.Schema{
					AnyOf: []*jsonschema.Schema{{Type: "number"}, {Type: "null"}},
				}
			}
			return nil
		},
	}
	return reflector.Reflect(&InvoiceRecord{})
}
