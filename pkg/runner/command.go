package runner

import (
	"github.com/alessio/shellescape"
)

// Command is a fully resolved subprocess invocation: an argument vector plus
// optional working directory, extra environment and stdin payload. There is
// no shell involved at any point, so no quoting rules apply when building one.
type Command struct {
	// Path is the executable name or path, resolved via PATH at run time.
	Path string
	// Args are the arguments passed to the executable.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the current process environment.
	Env []string
	// Stdin is fed to the process standard input when non-empty.
	Stdin string
	// Stream connects the process stdout/stderr to the terminal instead of
	// capturing it. Used for long-running operations like package installs.
	Stream bool
}

// New returns a Command for the given executable and arguments.
func New(path string, args ...string) Command {
	return Command{Path: path, Args: args}
}

// String renders the command the way a shell user would type it. Only used
// for display and logging.
func (c Command) String() string {
	return shellescape.QuoteCommand(append([]string{c.Path}, c.Args...))
}
