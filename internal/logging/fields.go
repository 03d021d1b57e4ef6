package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldPoleID is the standardized structured logging key for pole barcodes.
	FieldPoleID = "pole_id"
	// FieldPhoto is the standardized structured logging key for photo paths.
	FieldPhoto = "photo"
	// FieldRequestID is the standardized structured logging key for load-request identifiers.
	FieldRequestID = "request_id"
	// FieldToken is the standardized structured logging key for navigation tokens.
	FieldToken = "token"
)
