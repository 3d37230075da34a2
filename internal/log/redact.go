package log

import "strings"

const redactedArg = "<redacted>"

var secretFlags = map[string]struct{}{
	"--token":         {},
	"--authorization": {},
	"--password":      {},
	"--secret":        {},
}

// RedactArgs copies command line args with the values of secret flags masked,
// in both the "--flag value" and "--flag=value" forms.
func RedactArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(name, "-") && isSecretFlag(name) {
			out = append(out, name+"="+redactedArg)
			continue
		}
		out = append(out, arg)
		if isSecretFlag(arg) && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, redactedArg)
			i++
		}
	}
	return out
}

func isSecretFlag(flag string) bool {
	_, ok := secretFlags[strings.ToLower(strings.TrimSpace(flag))]
	return ok
}
