package metadata

import "slices"

// Serializer decides which attributes are written when an object is marshalled
type Serializer interface {
	Include(attributeName string) bool
}

type DefaultSerializer struct{}

func (DefaultSerializer) Include(string) bool {
	return true
}

type excludingSerializer struct {
	excluded []string
}

func (s excludingSerializer) Include(attributeName string) bool {
	return !slices.Contains(s.excluded, attributeName)
}

// Excluding returns a serializer that skips the named attributes
func Excluding(attributeNames ...string) Serializer {
	return excludingSerializer{excluded: attributeNames}
}

// SerializerOrDefault returns s, or the DefaultSerializer if s is nil
func SerializerOrDefault(s Serializer) Serializer {
	if s == nil {
		return DefaultSerializer{}
	}
	return s
}
