package diagnostic

import "regexp"

var goLanguages = []string{"go", "golang"}

// Go covers runtime panics and compiler output from the go toolchain.
type Go struct{}

func (Go) sealed() {}

// Name implements Language.
func (Go) Name() string { return "go" }

// Aliases implements Language.
func (Go) Aliases() []string { return []string{"golang"} }

// Extensions implements Language.
func (Go) Extensions() []string { return []string{".go"} }

// ResolvesScope implements Language.
func (Go) ResolvesScope() bool { return false }

// Fingerprints implements Language.
func (Go) Fingerprints() []*regexp.Regexp { return goFingerprints }

// Locations implements Language.
func (Go) Locations() []LocationPattern { return goLocations }

// Signatures implements Language.
func (Go) Signatures() []*Signature { return goSignatures }

var goFingerprints = []*regexp.Regexp{
	fingerprintPattern(`goroutine \d+ \[[\w ,]+\]:`),
	fingerprintPattern(`^panic: `),
	fingerprintPattern(`\.go:\d+`),
	fingerprintPattern(`^created by [\w./]+`),
	fingerprintPattern(`^exit status \d+$`),
}

var goLocations = []LocationPattern{
	locationPattern(`^\s*(\S+\.go):(\d+)`, false),
}

var goSignatures = []*Signature{
	{
		Name:         "NilPointerDereference",
		Pattern:      signaturePattern(`invalid memory address or nil pointer dereference`),
		Category:     CategoryRuntime,
		Severity:     SeverityCritical,
		Languages:    goLanguages,
		Explanation:  "A nil pointer, map value or interface was dereferenced.",
		WhatHappened: "The program read through a pointer that was never initialised, often after ignoring an error.",
		Remediation: []string{
			"Open the first frame of the goroutine trace to find the nil value",
			"Check the error returned alongside the value before using it",
			"Initialise struct pointer fields in the constructor",
		},
		Prevention: "Always handle errors before using the returned value and run go vet with nilness checks.",
		Reference:  "https://go.dev/ref/spec#Address_operators",
	},
	{
		Name:         "IndexOutOfRange",
		Pattern:      signaturePattern(`index out of range \[(-?\d+)\] with length (\d+)`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    goLanguages,
		Explanation:  "A slice, array or string index was outside its length.",
		WhatHappened: "The index was computed from data that was shorter than expected.",
		Remediation: []string{
			"Check len() before indexing",
			"Look for off-by-one errors in loop bounds",
		},
		Prevention: "Range over slices instead of indexing by hand.",
		Reference:  "https://go.dev/ref/spec#Index_expressions",
	},
	{
		Name:         "NilMapAssignment",
		Pattern:      signaturePattern(`assignment to entry in nil map`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    goLanguages,
		Explanation:  "A value was stored in a map that was never created.",
		WhatHappened: "The map variable or struct field has its zero value, nil.",
		Remediation: []string{
			"Create the map with make(map[K]V) before writing to it",
			"Initialise map fields in the struct's constructor",
		},
		Prevention: "Provide constructors for structs that contain maps.",
		Reference:  "https://go.dev/blog/maps",
	},
	{
		Name:         "Deadlock",
		Pattern:      signaturePattern(`all goroutines are asleep - deadlock!`),
		Category:     CategoryLogic,
		Severity:     SeverityCritical,
		Languages:    goLanguages,
		Explanation:  "Every goroutine is blocked and none can make progress.",
		WhatHappened: "A channel send or receive, or a lock acquisition, can never complete.",
		Remediation: []string{
			"Check for unbuffered channel sends without a receiver",
			"Make sure every WaitGroup.Add has a matching Done",
			"Look for a mutex locked twice on the same goroutine",
		},
		Prevention: "Keep channel ownership clear: the sender closes, receivers range.",
		Reference:  "https://go.dev/doc/effective_go#channels",
	},
	{
		Name:         "ConcurrentMapWrites",
		Pattern:      signaturePattern(`concurrent map (?:writes|read and map write|iteration and map write)`),
		Category:     CategoryLogic,
		Severity:     SeverityCritical,
		Languages:    goLanguages,
		Explanation:  "A map was accessed from several goroutines without synchronisation.",
		WhatHappened: "The runtime detected a data race on a map and aborted.",
		Remediation: []string{
			"Guard the map with a sync.Mutex or sync.RWMutex",
			"Use sync.Map for write-once, read-many caches",
			"Run the tests with -race to find other races",
		},
		Prevention: "Run the race detector in CI.",
		Reference:  "https://go.dev/doc/articles/race_detector",
	},
	{
		Name:         "UndefinedIdentifier",
		Pattern:      signaturePattern(`undefined: ([\w.]+)`),
		Category:     CategorySyntax,
		Severity:     SeverityHigh,
		Languages:    goLanguages,
		Explanation:  "A function, variable or type is not defined.",
		WhatHappened: "The compiler could not resolve the identifier: missing import, typo, unexported name, or stale generated code.",
		Remediation: []string{
			"Check the spelling and export status of the identifier",
			"Add the missing import",
			"Regenerate generated code if the identifier comes from it",
		},
		Prevention: "Run gopls in the editor so unresolved names are reported immediately.",
		Reference:  "https://go.dev/ref/spec#Declarations_and_scope",
	},
	{
		Name:         "ImportedAndNotUsed",
		Pattern:      signaturePattern(`"([^"]+)" imported and not used`),
		Category:     CategorySyntax,
		Severity:     SeverityLow,
		Languages:    goLanguages,
		Explanation:  "A package is imported but not used.",
		WhatHappened: "Go refuses to compile files with unused imports.",
		Remediation: []string{
			"Remove the import or use something from the package",
			"Run goimports -w to fix imports automatically",
		},
		Prevention: "Format on save with goimports.",
		Reference:  "https://go.dev/doc/effective_go#blank_unused",
	},
	{
		Name:         "DeclaredAndNotUsed",
		Pattern:      signaturePattern(`declared (?:and|but) not used(?:: (\w+))?`),
		Category:     CategorySyntax,
		Severity:     SeverityLow,
		Languages:    goLanguages,
		Explanation:  "A local variable is declared but never used.",
		WhatHappened: "Go refuses to compile functions with unused local variables.",
		Remediation: []string{
			"Use the variable or remove the declaration",
			"Assign to _ when the value is intentionally ignored",
		},
		Prevention: "Keep functions small so unused variables are easy to see.",
		Reference:  "https://go.dev/doc/effective_go#blank_unused",
	},
	{
		Name:         "MissingModule",
		Pattern:      signaturePattern(`no required module provides package ([^\s;]+)|cannot find package "([^"]+)"|missing go\.sum entry`),
		Category:     CategoryDependency,
		Severity:     SeverityHigh,
		Languages:    goLanguages,
		Explanation:  "A package is not available to the build.",
		WhatHappened: "The module is missing from go.mod, or go.sum does not list its checksum.",
		Remediation: []string{
			"Run go mod tidy to add missing requirements",
			"Run go get <module> to add a specific dependency",
			"Check replace directives that point at local paths",
		},
		Prevention: "Run go mod tidy before committing and check for a clean diff in CI.",
		Reference:  "https://go.dev/ref/mod#go-mod-tidy",
	},
	{
		Name:         "ImportCycle",
		Pattern:      signaturePattern(`import cycle not allowed`),
		Category:     CategoryDependency,
		Severity:     SeverityMedium,
		Languages:    goLanguages,
		Explanation:  "Two or more packages import each other.",
		WhatHappened: "The package graph contains a cycle, which Go does not allow.",
		Remediation: []string{
			"Move the shared types into a separate package",
			"Depend on an interface instead of the concrete package",
		},
		Prevention: "Keep a clear dependency direction between packages.",
		Reference:  "https://go.dev/ref/spec#Import_declarations",
	},
	{
		Name:         "ContextDeadlineExceeded",
		Pattern:      signaturePattern(`context deadline exceeded`),
		Category:     CategoryNetwork,
		Severity:     SeverityMedium,
		Languages:    goLanguages,
		Explanation:  "An operation did not finish before its context deadline.",
		WhatHappened: "A downstream call was slow or unreachable, or the timeout is too short.",
		Remediation: []string{
			"Check the latency and health of the called service",
			"Review the timeout set on the context",
		},
		Prevention: "Set timeouts per call based on measured latency.",
		Reference:  "https://pkg.go.dev/context#pkg-variables",
	},
	{
		Name:         "DialConnectionRefused",
		Pattern:      signaturePattern(`dial tcp ([^\s]+): connect: connection refused`),
		Category:     CategoryNetwork,
		Severity:     SeverityHigh,
		Languages:    goLanguages,
		Explanation:  "A TCP connection was refused.",
		WhatHappened: "Nothing is listening on the dialled address.",
		Remediation: []string{
			"Start the service listening on the reported address",
			"Check host and port configuration",
		},
		Prevention: "Wait for dependency readiness before dialling at startup.",
		Reference:  "https://pkg.go.dev/net#Dial",
	},
}
