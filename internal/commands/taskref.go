package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"todo/internal/exitcode"
)

// ErrTaskNumberRequired indicates no task number was provided.
var ErrTaskNumberRequired = errors.New("task number required")

// ParseTaskNumber parses the 1-based task number from the first argument,
// as printed by list.
//
// Parsing rules:
// 1. No args → ErrTaskNumberRequired
// 2. First arg all digits → that number (0 is reported as out of range)
// 3. Otherwise → error: invalid task number: <arg>
func ParseTaskNumber(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskNumberRequired
	}

	arg := args[0]
	if !isAllDigits(arg) {
		return 0, fmt.Errorf("invalid task number: %s", arg)
	}

	num, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid task number: %s", arg)
	}
	if num < 1 {
		return 0, fmt.Errorf("task number out of range: %d", num)
	}
	return num, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// printTaskNumberError reports a ParseTaskNumber failure.
func printTaskNumberError(err error, errOut io.Writer) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}
