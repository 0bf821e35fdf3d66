package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prompts on w and reads one line from r, returning true when the
// answer is "y" or "yes" (case-insensitive). Anything else, including an
// empty line or a read error, counts as no.
func Confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N] ", prompt)

	response, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
