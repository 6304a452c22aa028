package security

import "github.com/c360/groundctl/message"

// Policy is a wildcard-matchable (source, destination, operation) rule. A
// message is eligible for routing only if at least one installed policy
// matches it; "*" matches any value.
type Policy struct {
	Source      string
	Destination string
	Operation   string
}

// Matches reports whether the policy matches the message.
func (p Policy) Matches(msg message.Message) bool {
	return match(p.Source, msg.Source) &&
		match(p.Destination, msg.Destination) &&
		match(p.Operation, string(msg.Operation))
}

func match(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

// AllowAll is the default installed policy set.
func AllowAll() []Policy {
	return []Policy{{Source: "*", Destination: "*", Operation: "*"}}
}
