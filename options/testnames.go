package options

import "strings"

// ParseTestNames splits a --test value on commas. Commas inside parentheses or
// double quotes belong to the name, so parameterized test names survive intact.
func ParseTestNames(value string) []string {
	var (
		names   []string
		depth   int
		quoted  bool
		current strings.Builder
	)
	flush := func() {
		if name := strings.TrimSpace(current.String()); name != "" {
			names = append(names, name)
		}
		current.Reset()
	}

	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == '\\' && quoted && i+1 < len(value):
			current.WriteByte(c)
			i++
			c = value[i]
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case c == ',' && depth == 0:
			flush()
			continue
		}
		current.WriteByte(c)
	}
	flush()
	return names
}
