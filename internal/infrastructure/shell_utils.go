package infrastructure

import "strings"

// shellSpecial lists the characters that force an argument to be quoted
const shellSpecial = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// QuoteArg renders one argument the way a POSIX shell would need it. It is
// only used to display a command line in notices and logs, the process
// itself receives its arguments unquoted.
func QuoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, shellSpecial) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
}

// FormatCommandLine joins binary and args into a copy-pasteable line
func FormatCommandLine(binary string, args []string) string {
	var b strings.Builder
	b.WriteString(QuoteArg(binary))
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(QuoteArg(arg))
	}
	return b.String()
}
