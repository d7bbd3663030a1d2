package diagnostic

import "regexp"

const mdnErrorsDoc = "https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Errors/"

var javascriptLanguages = []string{"javascript", "typescript", "node"}

// JavaScript covers Node.js and browser stack traces, including TypeScript builds.
type JavaScript struct{}

func (JavaScript) sealed() {}

// Name implements Language.
func (JavaScript) Name() string { return "javascript" }

// Aliases implements Language.
func (JavaScript) Aliases() []string { return []string{"js", "node", "nodejs", "typescript", "ts"} }

// Extensions implements Language.
func (JavaScript) Extensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx"}
}

// ResolvesScope implements Language.
func (JavaScript) ResolvesScope() bool { return false }

// Fingerprints implements Language.
func (JavaScript) Fingerprints() []*regexp.Regexp { return javascriptFingerprints }

// Locations implements Language.
func (JavaScript) Locations() []LocationPattern { return javascriptLocations }

// Signatures implements Language.
func (JavaScript) Signatures() []*Signature { return javascriptSignatures }

var javascriptFingerprints = []*regexp.Regexp{
	fingerprintPattern(`^\s+at .+ \(.+:\d+:\d+\)$`),
	fingerprintPattern(`^\s+at [^\s(]+:\d+:\d+$`),
	fingerprintPattern(`node:internal/`),
	fingerprintPattern(`\.(?:js|mjs|cjs|jsx|ts|tsx):\d+:\d+`),
	fingerprintPattern(`Uncaught (?:\w+Error|\(in promise\))`),
	fingerprintPattern(`npm ERR!`),
}

var javascriptLocations = []LocationPattern{
	locationPattern(`([^\s()'"]+\.(?:js|mjs|cjs|jsx|ts|tsx)):(\d+)(?::\d+)?`, false),
}

var javascriptSignatures = []*Signature{
	{
		Name:         "UndefinedPropertyAccess",
		Pattern:      signaturePattern(`TypeError: Cannot read propert(?:y|ies) of (undefined|null)`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    javascriptLanguages,
		Explanation:  "A property was read from undefined or null.",
		WhatHappened: "A value expected to be an object was missing, often because data had not loaded yet.",
		Remediation: []string{
			"Use optional chaining (obj?.prop) where the value may be missing",
			"Check where the object is assigned and why it is undefined here",
			"Add a guard or default value before accessing the property",
		},
		Prevention: "Enable strictNullChecks in TypeScript to catch missing values at compile time.",
		Reference:  mdnErrorsDoc + "Cant_access_property",
	},
	{
		Name:         "NotAFunction",
		Pattern:      signaturePattern(`TypeError: ([\w.$\[\]]+) is not a function`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    javascriptLanguages,
		Explanation:  "A value that is not a function was called.",
		WhatHappened: "The callee is undefined or another type, often due to a wrong import or a typo.",
		Remediation: []string{
			"Log typeof the callee right before the call",
			"Check default versus named imports of the module",
			"Verify the method exists on this version of the library",
		},
		Prevention: "Use TypeScript or JSDoc types so callable shapes are checked.",
		Reference:  mdnErrorsDoc + "Not_a_function",
	},
	{
		Name:         "ReferenceError",
		Pattern:      signaturePattern(`ReferenceError: ([\w$]+) is not defined`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    javascriptLanguages,
		Explanation:  "A variable was referenced that does not exist in scope.",
		WhatHappened: "The identifier was never declared, misspelled, or is only available in another environment.",
		Remediation: []string{
			"Check the spelling of the identifier",
			"Declare or import the variable before use",
			"Check whether the global exists in this runtime (browser versus Node.js)",
		},
		Prevention: "Enable the no-undef ESLint rule.",
		Reference:  mdnErrorsDoc + "Not_defined",
	},
	{
		Name:         "UnexpectedToken",
		Pattern:      signaturePattern(`SyntaxError: (Unexpected (?:token|end of input|identifier).*)`),
		Category:     CategorySyntax,
		Severity:     SeverityHigh,
		Languages:    javascriptLanguages,
		Explanation:  "The JavaScript parser met a token it did not expect.",
		WhatHappened: "The source or a parsed JSON payload is malformed, or uses syntax the runtime does not support.",
		Remediation: []string{
			"Check brackets, braces and commas around the reported position",
			"If parsing JSON, log the raw payload to see what was received",
			"Check that ES module syntax is enabled when using import/export",
		},
		Prevention: "Run the code through a formatter and linter before committing.",
		Reference:  mdnErrorsDoc + "Unexpected_token",
	},
	{
		Name:         "ModuleNotFound",
		Pattern:      signaturePattern(`(?:Error: )?Cannot find module '([^']+)'`),
		Category:     CategoryDependency,
		Severity:     SeverityHigh,
		Languages:    javascriptLanguages,
		Explanation:  "A required module could not be resolved.",
		WhatHappened: "The package is not installed or the relative import path is wrong.",
		Remediation: []string{
			"Run npm install (or pnpm/yarn install) to install dependencies",
			"Check the relative path and file extension of local imports",
			"Verify the package is listed in package.json",
		},
		Prevention: "Commit the lockfile and install with npm ci in CI.",
		Reference:  "https://nodejs.org/api/errors.html#module_not_found",
	},
	{
		Name:         "UnhandledPromiseRejection",
		Pattern:      signaturePattern(`UnhandledPromiseRejection(?:Warning)?|Unhandled promise rejection`),
		Category:     CategoryRuntime,
		Severity:     SeverityMedium,
		Languages:    javascriptLanguages,
		Explanation:  "A promise was rejected and nothing handled the rejection.",
		WhatHappened: "An async function threw or a promise rejected without an await inside try/catch or a .catch handler.",
		Remediation: []string{
			"Add a .catch handler or wrap the await in try/catch",
			"Find the async call that is not awaited",
		},
		Prevention: "Enable the no-floating-promises lint rule.",
		Reference:  "https://nodejs.org/api/process.html#event-unhandledrejection",
	},
	{
		Name:         "ConnectionRefused",
		Pattern:      signaturePattern(`connect ECONNREFUSED ([\w.:\[\]]+)`),
		Category:     CategoryNetwork,
		Severity:     SeverityHigh,
		Languages:    javascriptLanguages,
		Explanation:  "The remote host refused the TCP connection.",
		WhatHappened: "Nothing is listening on the target host and port.",
		Remediation: []string{
			"Start the service the code is connecting to",
			"Check host and port configuration, including localhost versus 127.0.0.1",
			"Retry with backoff while dependent services start",
		},
		Prevention: "Add readiness checks for dependent services.",
		Reference:  "https://nodejs.org/api/errors.html#common-system-errors",
	},
	{
		Name:         "ENOENT",
		Pattern:      signaturePattern(`ENOENT: no such file or directory(?:, \w+ '([^']+)')?`),
		Category:     CategoryStorage,
		Severity:     SeverityMedium,
		Languages:    javascriptLanguages,
		Explanation:  "A file or directory was not found.",
		WhatHappened: "The path does not exist relative to the current working directory.",
		Remediation: []string{
			"Resolve paths with path.join(__dirname, ...) instead of relative strings",
			"Check that a build step that creates the file has run",
		},
		Prevention: "Derive file paths from a known root directory.",
		Reference:  "https://nodejs.org/api/errors.html#common-system-errors",
	},
	{
		Name:         "EACCES",
		Pattern:      signaturePattern(`EACCES: permission denied(?:, \w+ '([^']+)')?`),
		Category:     CategoryPermission,
		Severity:     SeverityHigh,
		Languages:    javascriptLanguages,
		Explanation:  "The process lacks permission for a file or port.",
		WhatHappened: "A file is owned by another user, or a privileged port below 1024 was requested.",
		Remediation: []string{
			"Fix ownership of the path instead of using sudo",
			"Use a port above 1024 for development servers",
		},
		Prevention: "Install global npm packages into a user-owned prefix.",
		Reference:  "https://nodejs.org/api/errors.html#common-system-errors",
	},
	{
		Name:         "HeapOutOfMemory",
		Pattern:      signaturePattern(`JavaScript heap out of memory`),
		Category:     CategoryRuntime,
		Severity:     SeverityCritical,
		Languages:    javascriptLanguages,
		Explanation:  "The V8 heap limit was reached.",
		WhatHappened: "The process allocated more memory than the configured heap size.",
		Remediation: []string{
			"Look for unbounded caches or arrays that grow over time",
			"Raise the limit temporarily with --max-old-space-size",
			"Stream large files instead of reading them fully",
		},
		Prevention: "Take heap snapshots under realistic load.",
		Reference:  "https://nodejs.org/api/cli.html#--max-old-space-sizesize-in-mib",
	},
	{
		Name:         "MaximumCallStackExceeded",
		Pattern:      signaturePattern(`RangeError: Maximum call stack size exceeded`),
		Category:     CategoryLogic,
		Severity:     SeverityCritical,
		Languages:    javascriptLanguages,
		Explanation:  "Recursion exceeded the call stack size.",
		WhatHappened: "A function calls itself without reaching a base case, often through setters or re-renders.",
		Remediation: []string{
			"Find the repeating frames in the stack trace",
			"Add or fix the base case of the recursion",
		},
		Prevention: "Avoid state updates that trigger themselves.",
		Reference:  mdnErrorsDoc + "Too_much_recursion",
	},
	{
		Name:         "ExperimentalWarning",
		Pattern:      signaturePattern(`ExperimentalWarning: (.+)`),
		Category:     CategoryConfiguration,
		Severity:     SeverityInfo,
		Languages:    javascriptLanguages,
		Explanation:  "An experimental Node.js feature is in use.",
		WhatHappened: "The runtime emitted a notice that the feature may change without a major release.",
		Remediation: []string{
			"Check whether a stable alternative exists in your Node.js version",
			"Pin the Node.js version while depending on the feature",
		},
		Prevention: "Track Node.js release notes when relying on experimental APIs.",
		Reference:  "https://nodejs.org/api/documentation.html#stability-index",
	},
}
