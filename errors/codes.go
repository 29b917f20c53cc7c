package errors

// ErrorCode is a machine-readable error code.
type ErrorCode string

const (
	// Configuration shape.
	ErrCodeProject           ErrorCode = "PROJECT_ERROR"
	ErrCodePipelineParse     ErrorCode = "PIPELINE_PARSE_ERROR"
	ErrCodeDuplicatePipeline ErrorCode = "DUPLICATE_PIPELINE"

	// Reference resolution.
	ErrCodeDependency       ErrorCode = "DEPENDENCY_ERROR"
	ErrCodeUnknownComponent ErrorCode = "UNKNOWN_COMPONENT"

	// Graph shape.
	ErrCodeCycle ErrorCode = "CYCLE_DETECTED"

	// Selection.
	ErrCodeSelector ErrorCode = "SELECTOR_ERROR"

	// Rendering.
	ErrCodeTemplate ErrorCode = "TEMPLATE_ERROR"

	// Execution planning.
	ErrCodeMicrobatchConfig ErrorCode = "MICROBATCH_CONFIG_ERROR"

	// Runtime.
	ErrCodeState     ErrorCode = "STATE_ERROR"
	ErrCodeComponent ErrorCode = "COMPONENT_ERROR"
)

// Process exit codes for the dft CLI.
const (
	ExitOK         = 0
	ExitRunFailed  = 1
	ExitValidation = 2
	ExitSelector   = 3
)

// exitCodes maps each error code to the CLI exit code it produces.
var exitCodes = map[ErrorCode]int{
	ErrCodeProject:           ExitValidation,
	ErrCodePipelineParse:     ExitValidation,
	ErrCodeDuplicatePipeline: ExitValidation,
	ErrCodeDependency:        ExitValidation,
	ErrCodeUnknownComponent:  ExitValidation,
	ErrCodeCycle:             ExitValidation,
	ErrCodeMicrobatchConfig:  ExitValidation,
	ErrCodeSelector:          ExitSelector,
	ErrCodeTemplate:          ExitRunFailed,
	ErrCodeState:             ExitRunFailed,
	ErrCodeComponent:         ExitRunFailed,
}

// ExitCodeFor returns the CLI exit code for an error code.
// Unknown codes map to ExitRunFailed.
func ExitCodeFor(code ErrorCode) int {
	if ec, ok := exitCodes[code]; ok {
		return ec
	}
	return ExitRunFailed
}
