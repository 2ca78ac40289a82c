package pipeline

// Default values for receipt processing.
const (
	// DefaultModelName is the default Gemini model used for reading receipts.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultAPIVersion is the Gemini API version requested by the client.
	DefaultAPIVersion = "v1"

	// rawExcerptLen bounds how much of an unparseable response is logged.
	rawExcerptLen = 500
)
