package diagnostic

import "regexp"

const javaAPIDoc = "https://docs.oracle.com/en/java/javase/21/docs/api/"

var javaLanguages = []string{"java", "kotlin"}

// Java covers JVM stack traces for Java and Kotlin.
type Java struct{}

func (Java) sealed() {}

// Name implements Language.
func (Java) Name() string { return "java" }

// Aliases implements Language.
func (Java) Aliases() []string { return []string{"kotlin", "jvm"} }

// Extensions implements Language.
func (Java) Extensions() []string { return []string{".java", ".kt", ".kts"} }

// ResolvesScope implements Language.
func (Java) ResolvesScope() bool { return false }

// Fingerprints implements Language.
func (Java) Fingerprints() []*regexp.Regexp { return javaFingerprints }

// Locations implements Language.
func (Java) Locations() []LocationPattern { return javaLocations }

// Signatures implements Language.
func (Java) Signatures() []*Signature { return javaSignatures }

var javaFingerprints = []*regexp.Regexp{
	fingerprintPattern(`^\s+at [\w.$<>]+\([\w$]+\.(?:java|kt):\d+\)`),
	fingerprintPattern(`Exception in thread "[^"]+"`),
	fingerprintPattern(`^Caused by: [\w.$]+`),
	fingerprintPattern(`\.\.\. \d+ more`),
	fingerprintPattern(`^\s+at [\w.$<>]+\((?:Native Method|Unknown Source)\)`),
}

var javaLocations = []LocationPattern{
	locationPattern(`at [\w.$<>]+\(([\w$]+\.(?:java|kt)):(\d+)\)`, false),
	locationPattern(`^\[ERROR\] ([^\s:\[]+\.java):\[(\d+),\d+\]`, false),
}

var javaSignatures = []*Signature{
	{
		Name:         "NullPointerException",
		Pattern:      signaturePattern(`java\.lang\.NullPointerException(?:: (.+))?`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    javaLanguages,
		Explanation:  "A null reference was dereferenced.",
		WhatHappened: "A method or field was accessed on a reference that was null.",
		Remediation: []string{
			"Read the helpful NPE message to see which expression was null",
			"Check where the reference is assigned and handle the null case",
			"Use Optional or Objects.requireNonNull at API boundaries",
		},
		Prevention: "Annotate nullability and enable static null analysis.",
		Reference:  javaAPIDoc + "java.base/java/lang/NullPointerException.html",
	},
	{
		Name:         "IndexOutOfBoundsException",
		Pattern:      signaturePattern(`(?:ArrayIndexOutOfBounds|StringIndexOutOfBounds|IndexOutOfBounds)Exception(?:: (.+))?`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    javaLanguages,
		Explanation:  "An array, list or string index was outside its valid range.",
		WhatHappened: "The index was negative or not less than the collection's size.",
		Remediation: []string{
			"Check loop bounds against length or size()",
			"Handle empty collections before accessing the first element",
		},
		Prevention: "Prefer enhanced for loops and streams over manual indexing.",
		Reference:  javaAPIDoc + "java.base/java/lang/IndexOutOfBoundsException.html",
	},
	{
		Name:         "ClassNotFoundException",
		Pattern:      signaturePattern(`(?:ClassNotFoundException|NoClassDefFoundError):?\s*([\w.$/]+)`),
		Category:     CategoryDependency,
		Severity:     SeverityHigh,
		Languages:    javaLanguages,
		Explanation:  "A class could not be loaded at runtime.",
		WhatHappened: "The class is missing from the runtime classpath, or its static initialiser failed.",
		Remediation: []string{
			"Check that the dependency providing the class is on the runtime classpath",
			"Run mvn dependency:tree or gradle dependencies to find version conflicts",
			"Rebuild to clear stale compiled classes",
		},
		Prevention: "Build fat jars or containers from a locked dependency set.",
		Reference:  javaAPIDoc + "java.base/java/lang/ClassNotFoundException.html",
	},
	{
		Name:         "OutOfMemoryError",
		Pattern:      signaturePattern(`java\.lang\.OutOfMemoryError(?:: (.+))?`),
		Category:     CategoryRuntime,
		Severity:     SeverityCritical,
		Languages:    javaLanguages,
		Explanation:  "The JVM ran out of heap or metaspace.",
		WhatHappened: "Live objects exceeded the configured memory limit.",
		Remediation: []string{
			"Capture a heap dump with -XX:+HeapDumpOnOutOfMemoryError and inspect it",
			"Look for caches or collections that are never cleared",
			"Increase -Xmx only after ruling out a leak",
		},
		Prevention: "Bound caches and monitor heap usage in production.",
		Reference:  javaAPIDoc + "java.base/java/lang/OutOfMemoryError.html",
	},
	{
		Name:         "StackOverflowError",
		Pattern:      signaturePattern(`java\.lang\.StackOverflowError`),
		Category:     CategoryLogic,
		Severity:     SeverityCritical,
		Languages:    javaLanguages,
		Explanation:  "The thread's stack was exhausted by deep recursion.",
		WhatHappened: "A method recursed without terminating, often via toString, equals or hashCode.",
		Remediation: []string{
			"Find the repeating frames in the trace",
			"Fix the recursion's base case or convert it to a loop",
		},
		Prevention: "Avoid bidirectional references in generated toString/equals methods.",
		Reference:  javaAPIDoc + "java.base/java/lang/StackOverflowError.html",
	},
	{
		Name:         "ClassCastException",
		Pattern:      signaturePattern(`ClassCastException: (.+)`),
		Category:     CategoryRuntime,
		Severity:     SeverityMedium,
		Languages:    javaLanguages,
		Explanation:  "An object was cast to a type it is not an instance of.",
		WhatHappened: "A downcast failed, often because of raw generic types or deserialisation.",
		Remediation: []string{
			"Check the runtime type with instanceof before casting",
			"Replace raw types with parameterised generics",
		},
		Prevention: "Avoid unchecked casts and raw collection types.",
		Reference:  javaAPIDoc + "java.base/java/lang/ClassCastException.html",
	},
	{
		Name:         "NumberFormatException",
		Pattern:      signaturePattern(`NumberFormatException: (.+)`),
		Category:     CategoryRuntime,
		Severity:     SeverityMedium,
		Languages:    javaLanguages,
		Explanation:  "A string could not be parsed as a number.",
		WhatHappened: "Input passed to Integer.parseInt or similar was empty or not numeric.",
		Remediation: []string{
			"Trim and validate the input before parsing",
			"Catch NumberFormatException where input is user supplied",
		},
		Prevention: "Validate configuration and request values when they are read.",
		Reference:  javaAPIDoc + "java.base/java/lang/NumberFormatException.html",
	},
	{
		Name:         "ConcurrentModificationException",
		Pattern:      signaturePattern(`ConcurrentModificationException`),
		Category:     CategoryLogic,
		Severity:     SeverityMedium,
		Languages:    javaLanguages,
		Explanation:  "A collection was modified while being iterated.",
		WhatHappened: "Elements were added or removed inside a for-each loop or from another thread.",
		Remediation: []string{
			"Remove elements through Iterator.remove() or removeIf()",
			"Use a concurrent collection when several threads share it",
		},
		Prevention: "Do not mutate collections during iteration.",
		Reference:  javaAPIDoc + "java.base/java/util/ConcurrentModificationException.html",
	},
	{
		Name:         "SQLException",
		Pattern:      signaturePattern(`(?:java\.sql\.)?SQL(?:Syntax\w*)?Exception: (.+)`),
		Category:     CategoryStorage,
		Severity:     SeverityHigh,
		Languages:    javaLanguages,
		Explanation:  "A database operation failed.",
		WhatHappened: "The driver reported a query, constraint or connection problem.",
		Remediation: []string{
			"Read the SQL state and vendor code in the message",
			"Run the failing query directly against the database",
			"Check connection URL, credentials and schema migrations",
		},
		Prevention: "Test queries against the same database engine used in production.",
		Reference:  javaAPIDoc + "java.sql/java/sql/SQLException.html",
	},
	{
		Name:         "ConnectException",
		Pattern:      signaturePattern(`java\.net\.(?:ConnectException|SocketTimeoutException|UnknownHostException): (.+)`),
		Category:     CategoryNetwork,
		Severity:     SeverityHigh,
		Languages:    javaLanguages,
		Explanation:  "A network connection failed.",
		WhatHappened: "The host was unreachable, refused the connection, or did not answer in time.",
		Remediation: []string{
			"Check the target host and port are reachable from this machine",
			"Verify DNS resolution of the host name",
			"Set explicit connect and read timeouts",
		},
		Prevention: "Add health checks and retries around remote calls.",
		Reference:  javaAPIDoc + "java.base/java/net/ConnectException.html",
	},
	{
		Name:         "FileNotFoundException",
		Pattern:      signaturePattern(`java\.io\.FileNotFoundException: (.+)`),
		Category:     CategoryStorage,
		Severity:     SeverityMedium,
		Languages:    javaLanguages,
		Explanation:  "A file could not be opened.",
		WhatHappened: "The file does not exist, is a directory, or cannot be read.",
		Remediation: []string{
			"Log the absolute path that was opened",
			"Load bundled files from the classpath instead of the working directory",
		},
		Prevention: "Resolve paths from configuration rather than the process working directory.",
		Reference:  javaAPIDoc + "java.base/java/io/FileNotFoundException.html",
	},
}
