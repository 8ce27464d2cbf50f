// Package cli is the command-execution kernel of cloudctl.
//
// Every command runs through the same pipeline: the kernel resolves the
// active profile, lets the command set up and build its operation, executes
// it while the progress indicator animates, renders the result in the active
// output mode and writes it to stdout.
//
// # Core Components
//
// Kernel and Run drive the pipeline:
//   - Profile resolution with a fixed precedence (--token, --profile,
//     CLOUDCTL_PROFILE, default profile), cached for the whole invocation
//   - Fail-fast setup before any network access
//   - Synchronous execution, never retried
//   - Output trimmed of trailing whitespace and only written when non-empty
//
// Error and Category form the error taxonomy. Each category maps to one
// stable exit code:
//
//	0   success
//	1   internal error (a bug)
//	2   invalid input
//	3   resource not found
//	4   resource already exists
//	5   unsupported operation
//	6   timed out waiting for a resource
//	7   profile not found
//	130 interrupted
//
// Errors carry hints. A hint pairs a label with a command, often the original
// command line with one flag added (Invocation.FixHint).
//
// # Output Formats
//
// A result is rendered in exactly one of three modes, chosen once per process:
//   - human: free text with optional color, kubectl-style tables and a
//     "Next steps" list
//   - json: the envelope {code, message?, data?, nextSteps?}, pretty-printed
//   - csv: a header line and one line per record
//
// Colors are controlled by an explicit Theme value, never by global state.
// Messages may embed highlight markup (Highlight), which becomes a colored
// name or a single-quoted one in plain output.
//
// # Waiting
//
// Poll blocks until a caller-supplied predicate holds for the observed status
// or a timeout elapses. Indicator animates on stderr while the foreground
// blocks; Prompter pauses it around confirmation prompts.
package cli
