package notes

// Kind classifies the outcome of an operation.
type Kind int

// Outcome kinds. KindNone is success.
const (
	KindNone Kind = iota
	KindInvalidInput
	KindPathEscape
	KindDirectoryCreation
	KindFileNotFound
	KindIO
)

var kindNames = [...]string{
	KindNone:              "ok",
	KindInvalidInput:      "invalid_input",
	KindPathEscape:        "path_escape",
	KindDirectoryCreation: "directory_creation",
	KindFileNotFound:      "file_not_found",
	KindIO:                "io",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Result is what every operation returns. Text is always set and is the
// message handed back to the host; Kind lets callers branch without parsing it.
type Result struct {
	Text string
	Kind Kind

	// Dir is the resolved directory, empty when resolution failed before
	// a directory was known.
	Dir string

	// Path is the file target, when one was computed.
	Path string

	// Err is the underlying failure, nil on success and for the
	// informational "not found" read.
	Err error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Kind == KindNone }
