package diagnostic

import "regexp"

const pythonExceptionsDoc = "https://docs.python.org/3/library/exceptions.html#"

var pythonLanguages = []string{"python"}

// Python covers CPython tracebacks, pytest output and warnings.
type Python struct{}

func (Python) sealed() {}

// Name implements Language.
func (Python) Name() string { return "python" }

// Aliases implements Language.
func (Python) Aliases() []string { return []string{"py", "python3"} }

// Extensions implements Language.
func (Python) Extensions() []string { return []string{".py", ".pyw"} }

// ResolvesScope implements Language. Python is the only language with
// indentation-based def/class lookup.
func (Python) ResolvesScope() bool { return true }

// Fingerprints implements Language.
func (Python) Fingerprints() []*regexp.Regexp { return pythonFingerprints }

// Locations implements Language.
func (Python) Locations() []LocationPattern { return pythonLocations }

// Signatures implements Language.
func (Python) Signatures() []*Signature { return pythonSignatures }

var pythonFingerprints = []*regexp.Regexp{
	fingerprintPattern(`Traceback \(most recent call last\):`),
	fingerprintPattern(`File "[^"]+", line \d+`),
	fingerprintPattern(`line \d+, in [<\w>]+`),
	fingerprintPattern(`^During handling of the above exception, another exception occurred:`),
	fingerprintPattern(`\.py:\d+: \w+Warning`),
}

var pythonLocations = []LocationPattern{
	locationPattern(`File "([^"]+)", line (\d+)`, true),
	locationPattern(`^([^\s:"]+\.py):(\d+)`, false),
}

var pythonSignatures = []*Signature{
	{
		Name:         "SyntaxError",
		Pattern:      signaturePattern(`SyntaxError: (.+)`),
		Category:     CategorySyntax,
		Severity:     SeverityHigh,
		Languages:    pythonLanguages,
		Explanation:  "The parser could not understand the source code.",
		WhatHappened: "Python stopped before running anything because a statement is not valid Python syntax.",
		Remediation: []string{
			"Look at the line and column marked by the caret in the traceback",
			"Check for missing colons, unbalanced brackets or unclosed string quotes",
			"Make sure the code targets the installed Python version",
		},
		Prevention: "Run a linter such as ruff or flake8 in your editor to catch syntax errors while typing.",
		Reference:  pythonExceptionsDoc + "SyntaxError",
	},
	{
		Name:         "IndentationError",
		Pattern:      signaturePattern(`IndentationError: (.+)`),
		Category:     CategorySyntax,
		Severity:     SeverityHigh,
		Languages:    pythonLanguages,
		Explanation:  "A block is not indented consistently.",
		WhatHappened: "The interpreter found an indentation level that does not match the surrounding block.",
		Remediation: []string{
			"Re-indent the reported block using spaces only",
			"Check that every statement ending with a colon is followed by an indented block",
			"Configure your editor to convert tabs to four spaces",
		},
		Prevention: "Use an auto-formatter such as black so indentation is always normalised.",
		Reference:  pythonExceptionsDoc + "IndentationError",
	},
	{
		Name:         "NameError",
		Pattern:      signaturePattern(`NameError: name '(\w+)' is not defined`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    pythonLanguages,
		Explanation:  "A variable or function name was used before it was defined.",
		WhatHappened: "Python looked the name up in the local, global and builtin scopes and did not find it.",
		Remediation: []string{
			"Check the spelling of the name reported in the error",
			"Make sure the name is assigned or imported before this line runs",
			"Add the missing import if the name comes from another module",
		},
		Prevention: "Enable undefined-name checks in your linter.",
		Reference:  pythonExceptionsDoc + "NameError",
	},
	{
		Name:         "TypeError",
		Pattern:      signaturePattern(`^TypeError: (.+)`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    pythonLanguages,
		Explanation:  "An operation was applied to a value of the wrong type.",
		WhatHappened: "A function received an argument of an unexpected type, or an operator was used with incompatible operands.",
		Remediation: []string{
			"Print or log the type of each operand on the failing line",
			"Convert values explicitly, for example with int() or str()",
			"Check the function signature for the expected argument count and types",
		},
		Prevention: "Add type hints and run mypy or pyright in CI.",
		Reference:  pythonExceptionsDoc + "TypeError",
	},
	{
		Name:         "AttributeError",
		Pattern:      signaturePattern(`AttributeError: (.+) has no attribute '(\w+)'`),
		Category:     CategoryRuntime,
		Severity:     SeverityMedium,
		Languages:    pythonLanguages,
		Explanation:  "An attribute or method was accessed on an object that does not have it.",
		WhatHappened: "The object is of a different type than expected, often None returned from an earlier call.",
		Remediation: []string{
			"Check whether the object is None before accessing the attribute",
			"Verify the attribute name and the object's type with dir() or type()",
			"Check that the library version provides this attribute",
		},
		Prevention: "Handle None return values explicitly and use type hints for optional values.",
		Reference:  pythonExceptionsDoc + "AttributeError",
	},
	{
		Name:         "IndexError",
		Pattern:      signaturePattern(`IndexError: (.+)`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    pythonLanguages,
		Explanation:  "A sequence was indexed with a position outside its bounds.",
		WhatHappened: "The code read or wrote a list, tuple or string position that does not exist.",
		Remediation: []string{
			"Check the length of the sequence before indexing it",
			"Look for off-by-one errors in loop bounds and slices",
			"Handle the empty-sequence case explicitly",
		},
		Prevention: "Iterate directly over sequences instead of indexing by position where possible.",
		Reference:  pythonExceptionsDoc + "IndexError",
	},
	{
		Name:         "KeyError",
		Pattern:      signaturePattern(`KeyError: (.+)`),
		Category:     CategoryRuntime,
		Severity:     SeverityMedium,
		Languages:    pythonLanguages,
		Explanation:  "A dictionary lookup used a key that is not present.",
		WhatHappened: "The mapping did not contain the requested key at the time of access.",
		Remediation: []string{
			"Use dict.get() with a default value for optional keys",
			"Check the key with the in operator before reading it",
			"Print the available keys to compare them with the requested one",
		},
		Prevention: "Validate external input such as JSON payloads against a schema before use.",
		Reference:  pythonExceptionsDoc + "KeyError",
	},
	{
		Name:         "ValueError",
		Pattern:      signaturePattern(`ValueError: (.+)`),
		Category:     CategoryRuntime,
		Severity:     SeverityMedium,
		Languages:    pythonLanguages,
		Explanation:  "A function received an argument of the right type but an invalid value.",
		WhatHappened: "A conversion or unpacking could not be performed on the given value.",
		Remediation: []string{
			"Check the value being converted or unpacked on the failing line",
			"Validate input before conversion and handle the invalid case",
			"Wrap parsing of untrusted input in try/except ValueError",
		},
		Prevention: "Validate input at system boundaries.",
		Reference:  pythonExceptionsDoc + "ValueError",
	},
	{
		Name:         "ZeroDivisionError",
		Pattern:      signaturePattern(`ZeroDivisionError: (.+)`),
		Category:     CategoryLogic,
		Severity:     SeverityMedium,
		Languages:    pythonLanguages,
		Explanation:  "A number was divided by zero.",
		WhatHappened: "The divisor evaluated to zero at runtime.",
		Remediation: []string{
			"Guard the division with a check for a zero divisor",
			"Trace where the divisor comes from and why it can be zero",
		},
		Prevention: "Treat empty collections and zero counts as explicit cases in calculations.",
		Reference:  pythonExceptionsDoc + "ZeroDivisionError",
	},
	{
		Name:         "ModuleNotFoundError",
		Pattern:      signaturePattern(`(?:ModuleNotFoundError|ImportError): No module named '([\w.]+)'`),
		Category:     CategoryDependency,
		Severity:     SeverityHigh,
		Languages:    pythonLanguages,
		Explanation:  "A module could not be found on the import path.",
		WhatHappened: "The package is not installed in the active environment or the module path is wrong.",
		Remediation: []string{
			"Install the package with pip install <package> in the active environment",
			"Check that the expected virtual environment is activated",
			"Verify the module name and the package layout for local imports",
		},
		Prevention: "Pin dependencies in requirements.txt or pyproject.toml and always work inside a virtual environment.",
		Reference:  pythonExceptionsDoc + "ModuleNotFoundError",
	},
	{
		Name:         "ImportError",
		Pattern:      signaturePattern(`ImportError: cannot import name '(\w+)'`),
		Category:     CategoryDependency,
		Severity:     SeverityHigh,
		Languages:    pythonLanguages,
		Explanation:  "A name could not be imported from a module that does exist.",
		WhatHappened: "The module does not define the name, often because of a version mismatch or a circular import.",
		Remediation: []string{
			"Check that the installed package version exports the name",
			"Look for circular imports between your own modules",
			"Import the module and access the attribute lazily if a cycle cannot be removed",
		},
		Prevention: "Keep module dependencies acyclic and pin library versions.",
		Reference:  pythonExceptionsDoc + "ImportError",
	},
	{
		Name:         "FileNotFoundError",
		Pattern:      signaturePattern(`FileNotFoundError: (?:\[Errno 2\] )?(.+)`),
		Category:     CategoryStorage,
		Severity:     SeverityMedium,
		Languages:    pythonLanguages,
		Explanation:  "A file or directory that the code tried to open does not exist.",
		WhatHappened: "The path is wrong, relative to an unexpected working directory, or the file was never created.",
		Remediation: []string{
			"Print the absolute path being opened with os.path.abspath()",
			"Build paths relative to __file__ instead of the working directory",
			"Create missing directories with os.makedirs(path, exist_ok=True)",
		},
		Prevention: "Use pathlib and resolve paths from a known base directory.",
		Reference:  pythonExceptionsDoc + "FileNotFoundError",
	},
	{
		Name:         "PermissionError",
		Pattern:      signaturePattern(`PermissionError: (?:\[Errno 13\] )?(.+)`),
		Category:     CategoryPermission,
		Severity:     SeverityHigh,
		Languages:    pythonLanguages,
		Explanation:  "The process is not allowed to access a file or resource.",
		WhatHappened: "The operating system refused the operation for the current user.",
		Remediation: []string{
			"Check ownership and mode of the path with ls -l",
			"Write to a user-owned location instead of a system directory",
			"Avoid running with elevated privileges as a workaround",
		},
		Prevention: "Keep writable data under a dedicated, user-owned directory.",
		Reference:  pythonExceptionsDoc + "PermissionError",
	},
	{
		Name:         "RecursionError",
		Pattern:      signaturePattern(`RecursionError: maximum recursion depth exceeded`),
		Category:     CategoryLogic,
		Severity:     SeverityCritical,
		Languages:    pythonLanguages,
		Explanation:  "A function recursed deeper than the interpreter allows.",
		WhatHappened: "A recursive call is missing a base case or the input is too deep for recursion.",
		Remediation: []string{
			"Check the base case of the recursive function",
			"Rewrite deep recursion as an explicit loop with a stack",
			"Look for properties or __getattr__ implementations that call themselves",
		},
		Prevention: "Prefer iteration for unbounded input depth.",
		Reference:  pythonExceptionsDoc + "RecursionError",
	},
	{
		Name:         "MemoryError",
		Pattern:      signaturePattern(`^MemoryError\b`),
		Category:     CategoryRuntime,
		Severity:     SeverityCritical,
		Languages:    pythonLanguages,
		Explanation:  "The interpreter ran out of memory.",
		WhatHappened: "An allocation failed, usually because a data structure grew without bound.",
		Remediation: []string{
			"Process data in chunks or stream it instead of loading it at once",
			"Check for collections that grow inside long-running loops",
		},
		Prevention: "Profile memory with tracemalloc on realistic input sizes.",
		Reference:  pythonExceptionsDoc + "MemoryError",
	},
	{
		Name:         "ConnectionError",
		Pattern:      signaturePattern(`(?:ConnectionRefusedError|ConnectionResetError|requests\.exceptions\.ConnectionError|ConnectionError): (.+)`),
		Category:     CategoryNetwork,
		Severity:     SeverityHigh,
		Languages:    pythonLanguages,
		Explanation:  "A network connection could not be established or was dropped.",
		WhatHappened: "The remote service is down, unreachable, or refused the connection.",
		Remediation: []string{
			"Check that the target service is running and listening on the expected port",
			"Verify host, port and proxy settings",
			"Add retries with backoff for transient failures",
		},
		Prevention: "Use timeouts and retries for every outbound network call.",
		Reference:  pythonExceptionsDoc + "ConnectionError",
	},
	{
		Name:         "UnicodeDecodeError",
		Pattern:      signaturePattern(`UnicodeDecodeError: '(\w+)' codec can't decode`),
		Category:     CategoryRuntime,
		Severity:     SeverityMedium,
		Languages:    pythonLanguages,
		Explanation:  "Bytes could not be decoded with the chosen text encoding.",
		WhatHappened: "A file or payload was read with an encoding that does not match its content.",
		Remediation: []string{
			"Pass encoding='utf-8' (or the real encoding) when opening the file",
			"Open binary data in 'rb' mode instead of text mode",
		},
		Prevention: "Always specify encodings explicitly when reading text.",
		Reference:  pythonExceptionsDoc + "UnicodeDecodeError",
	},
	{
		Name:         "DeprecationWarning",
		Pattern:      signaturePattern(`DeprecationWarning: (.+)`),
		Category:     CategoryConfiguration,
		Severity:     SeverityInfo,
		Languages:    pythonLanguages,
		Explanation:  "A deprecated API is in use.",
		WhatHappened: "The code calls an API that will be removed in a future release.",
		Remediation: []string{
			"Replace the deprecated call with the alternative named in the warning",
			"Check the library changelog for the migration path",
		},
		Prevention: "Run tests with -W error::DeprecationWarning to surface deprecations early.",
		Reference:  pythonExceptionsDoc + "DeprecationWarning",
	},
}
