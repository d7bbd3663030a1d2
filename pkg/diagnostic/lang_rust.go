package diagnostic

import "regexp"

const rustErrorIndex = "https://doc.rust-lang.org/error_codes/"

var rustLanguages = []string{"rust"}

// Rust covers rustc diagnostics and runtime panics.
type Rust struct{}

func (Rust) sealed() {}

// Name implements Language.
func (Rust) Name() string { return "rust" }

// Aliases implements Language.
func (Rust) Aliases() []string { return []string{"rs"} }

// Extensions implements Language.
func (Rust) Extensions() []string { return []string{".rs"} }

// ResolvesScope implements Language.
func (Rust) ResolvesScope() bool { return false }

// Fingerprints implements Language.
func (Rust) Fingerprints() []*regexp.Regexp { return rustFingerprints }

// Locations implements Language.
func (Rust) Locations() []LocationPattern { return rustLocations }

// Signatures implements Language.
func (Rust) Signatures() []*Signature { return rustSignatures }

var rustFingerprints = []*regexp.Regexp{
	fingerprintPattern(`thread '[^']+' panicked at`),
	fingerprintPattern("note: run with `RUST_BACKTRACE=1`"),
	fingerprintPattern(`error\[E\d{4}\]`),
	fingerprintPattern(`^\s*--> [^\s:]+\.rs:\d+:\d+`),
}

var rustLocations = []LocationPattern{
	locationPattern(`--> ([^\s:]+\.rs):(\d+):\d+`, false),
	locationPattern(`panicked at (?:'[^']*', )?([^\s:]+\.rs):(\d+)`, false),
}

var rustSignatures = []*Signature{
	{
		Name:         "UnwrapOnNone",
		Pattern:      signaturePattern("called `Option::unwrap\\(\\)` on a `None` value"),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    rustLanguages,
		Explanation:  "unwrap() was called on an Option that was None.",
		WhatHappened: "A value assumed to be present was missing and the thread panicked.",
		Remediation: []string{
			"Replace unwrap() with a match, if let, or ok_or(...)?",
			"Use expect(\"reason\") while debugging to describe the assumption",
		},
		Prevention: "Reserve unwrap() for cases that are provably infallible.",
		Reference:  "https://doc.rust-lang.org/std/option/enum.Option.html#method.unwrap",
	},
	{
		Name:         "UnwrapOnErr",
		Pattern:      signaturePattern("called `Result::unwrap\\(\\)` on an `Err` value: (.+)"),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    rustLanguages,
		Explanation:  "unwrap() was called on a Result that held an error.",
		WhatHappened: "An operation failed and the error was turned into a panic.",
		Remediation: []string{
			"Propagate the error with ? instead of unwrapping",
			"Handle the specific error variant shown in the message",
		},
		Prevention: "Return Result from functions that can fail and handle errors at the boundary.",
		Reference:  "https://doc.rust-lang.org/std/result/enum.Result.html#method.unwrap",
	},
	{
		Name:         "IndexOutOfBounds",
		Pattern:      signaturePattern(`index out of bounds: the len is (\d+) but the index is (\d+)`),
		Category:     CategoryRuntime,
		Severity:     SeverityHigh,
		Languages:    rustLanguages,
		Explanation:  "A slice or vector was indexed past its end.",
		WhatHappened: "The index was not less than the length.",
		Remediation: []string{
			"Use .get(i) which returns an Option instead of panicking",
			"Check loop bounds against .len()",
		},
		Prevention: "Prefer iterators over manual indexing.",
		Reference:  "https://doc.rust-lang.org/std/primitive.slice.html#method.get",
	},
	{
		Name:         "BorrowConflict",
		Pattern:      signaturePattern(`error\[E0(?:499|502|505|506)\]: (.+)`),
		Category:     CategorySyntax,
		Severity:     SeverityHigh,
		Languages:    rustLanguages,
		Explanation:  "The borrow checker found conflicting borrows.",
		WhatHappened: "A value is borrowed mutably while another borrow of it is still alive.",
		Remediation: []string{
			"Shorten the lifetime of the first borrow by moving it into a smaller scope",
			"Clone the data if shared ownership is acceptable",
			"Restructure the code so the mutation happens after the read",
		},
		Prevention: "Keep borrows short-lived and split large structs into independent fields.",
		Reference:  rustErrorIndex + "E0502.html",
	},
	{
		Name:         "UseOfMovedValue",
		Pattern:      signaturePattern(`error\[E0382\]: (?:borrow|use) of moved value(?:: ` + "`" + `([^` + "`" + `]+)` + "`" + `)?`),
		Category:     CategorySyntax,
		Severity:     SeverityHigh,
		Languages:    rustLanguages,
		Explanation:  "A value was used after ownership moved elsewhere.",
		WhatHappened: "The value was passed by value earlier, so this binding no longer owns it.",
		Remediation: []string{
			"Pass a reference (&value) instead of moving",
			"Clone the value before the move if both uses need ownership",
		},
		Prevention: "Design function signatures to borrow unless they need ownership.",
		Reference:  rustErrorIndex + "E0382.html",
	},
	{
		Name:         "MismatchedTypes",
		Pattern:      signaturePattern(`error\[E0308\]: mismatched types`),
		Category:     CategorySyntax,
		Severity:     SeverityMedium,
		Languages:    rustLanguages,
		Explanation:  "An expression has a different type than expected.",
		WhatHappened: "The compiler inferred one type where the context requires another.",
		Remediation: []string{
			"Read the expected and found types in the note below the error",
			"Add an explicit conversion such as .into() or as",
		},
		Prevention: "Annotate types at API boundaries.",
		Reference:  rustErrorIndex + "E0308.html",
	},
	{
		Name:         "UnresolvedImport",
		Pattern:      signaturePattern(`error\[E0432\]: unresolved import(?: ` + "`" + `([^` + "`" + `]+)` + "`" + `)?`),
		Category:     CategoryDependency,
		Severity:     SeverityHigh,
		Languages:    rustLanguages,
		Explanation:  "A use declaration could not be resolved.",
		WhatHappened: "The crate is not a dependency, a feature is disabled, or the path is wrong.",
		Remediation: []string{
			"Add the crate to Cargo.toml with cargo add <crate>",
			"Enable the crate feature that exposes the item",
			"Check the module path for typos",
		},
		Prevention: "Keep Cargo.lock committed for binaries.",
		Reference:  rustErrorIndex + "E0432.html",
	},
	{
		Name:         "StackOverflow",
		Pattern:      signaturePattern(`thread '[^']+' has overflowed its stack`),
		Category:     CategoryLogic,
		Severity:     SeverityCritical,
		Languages:    rustLanguages,
		Explanation:  "A thread exhausted its stack.",
		WhatHappened: "Unbounded recursion or a very large stack allocation.",
		Remediation: []string{
			"Convert deep recursion to iteration",
			"Box large arrays instead of placing them on the stack",
		},
		Prevention: "Avoid recursion over untrusted input depth.",
		Reference:  "https://doc.rust-lang.org/std/thread/struct.Builder.html#method.stack_size",
	},
}
