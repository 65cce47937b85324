package mongodb

const (
	// PropertyValuesCollection stores one document per property editor value.
	PropertyValuesCollection = "property_values"
)
