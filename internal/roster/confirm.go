package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrAborted is returned when the operator declines a destructive-action
// confirmation. It signals a no-op: nothing was sent and nothing changed.
var ErrAborted = errors.New("aborted by operator")

// Confirmer asks the operator to approve a destructive action before it is
// dispatched. Returning false aborts the action with no side effect.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// AutoConfirm approves everything. The web layer uses it because the browser
// has already asked the operator before the request reaches the manager.
var AutoConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// PromptConfirmer asks on the terminal and accepts y/yes.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (p *PromptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
