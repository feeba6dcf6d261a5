// internal/models/contract_fields.go
package models

// Field identifiers an owner may ask to modify on an active contract.
const (
	FieldTenantName        = "tenant_name"
	FieldTenantCIN         = "tenant_cin"
	FieldTenantAddress     = "tenant_address"
	FieldMonthlyRent       = "monthly_rent"
	FieldDeposit           = "deposit"
	FieldContractDuration  = "contract_duration"
	FieldSpecialConditions = "special_conditions"
	FieldPaymentTerms      = "payment_terms"
)

// FieldMapping binds a key of the submitted modifications to a key of the
// contract data document.
type FieldMapping struct {
	InputKey string
	DataKey  string
}

// ContractFieldMappings is the closed vocabulary. A field may cover several
// keys: the duration is edited through its start and end dates.
var ContractFieldMappings = map[string][]FieldMapping{
	FieldTenantName:        {{InputKey: "tenant_name", DataKey: "tenantName"}},
	FieldTenantCIN:         {{InputKey: "tenant_cin", DataKey: "tenantCin"}},
	FieldTenantAddress:     {{InputKey: "tenant_address", DataKey: "tenantAddress"}},
	FieldMonthlyRent:       {{InputKey: "monthly_rent", DataKey: "monthlyRent"}},
	FieldDeposit:           {{InputKey: "deposit", DataKey: "deposit"}},
	FieldContractDuration:  {{InputKey: "start_date", DataKey: "startDate"}, {InputKey: "end_date", DataKey: "endDate"}},
	FieldSpecialConditions: {{InputKey: "special_conditions", DataKey: "specialConditions"}},
	FieldPaymentTerms:      {{InputKey: "payment_terms", DataKey: "paymentDueDate"}},
}

func IsContractField(field string) bool {
	_, ok := ContractFieldMappings[field]
	return ok
}

// ApplyFieldModifications overwrites data keys for every field the request
// allows. Keys outside the vocabulary or outside allowed are ignored. It
// returns the data keys that changed.
func ApplyFieldModifications(data JSONB, allowed []string, modifications map[string]interface{}) []string {
	var applied []string
	for _, field := range allowed {
		for _, m := range ContractFieldMappings[field] {
			value, ok := modifications[m.InputKey]
			if !ok {
				continue
			}
			data[m.DataKey] = value
			applied = append(applied, m.DataKey)
		}
	}
	return applied
}
