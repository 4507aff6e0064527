package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// promptYesNo asks a yes/no question, re-asking on anything it does not
// understand. An empty answer or end of input takes def.
func promptYesNo(reader *bufio.Reader, out io.Writer, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(out, "%s %s: ", question, hint)

	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		if err == io.EOF {
			fmt.Fprintln(out)
			return def, nil
		}
		return false, err
	}

	switch strings.TrimSpace(strings.ToLower(input)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		fmt.Fprintln(out, "Please answer y or n.")
		return promptYesNo(reader, out, question, def)
	}
}

// promptInt asks for an integer in [lo, hi]. An empty answer
// takes def.
func promptInt(reader *bufio.Reader, out io.Writer, label string, def, lo, hi int) (int, error) {
	fmt.Fprintf(out, "%s [%d]: ", label, def)

	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		if err == io.EOF {
			return def, nil
		}
		return 0, err
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	v, convErr := strconv.Atoi(input)
	if convErr != nil || v < lo || v > hi {
		fmt.Fprintf(out, "  Error: enter a number between %d and %d\n", lo, hi)
		return promptInt(reader, out, label, def, lo, hi)
	}
	return v, nil
}

// promptChoice asks for one of choices. An empty answer takes def.
func promptChoice(reader *bufio.Reader, out io.Writer, label string, def string, choices []string) (string, error) {
	fmt.Fprintf(out, "%s (%s) [%s]: ", label, strings.Join(choices, ", "), def)

	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		if err == io.EOF {
			return def, nil
		}
		return "", err
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return def, nil
	}
	for _, c := range choices {
		if input == c {
			return c, nil
		}
	}
	fmt.Fprintln(out, "Invalid choice, please try again.")
	return promptChoice(reader, out, label, def, choices)
}
