package options

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultFormat is used when a specification names no format.
	DefaultFormat = "nunit3"
	// UserFormat is implied by a transform given without a format.
	UserFormat = "user"
	// ExploreDefaultFormat is written to stdout when explore is given no specification at all.
	ExploreDefaultFormat = "cases"
	DefaultResultFile    = "TestResult.xml"
)

var errMissingPath = errors.New("output specification has no path")

// OutputSpecification says where and how a result or explore document is written.
type OutputSpecification struct {
	OutputPath string
	Format     string
	// Transform is empty when none was given.
	Transform string
}

func (s OutputSpecification) String() string {
	out := s.OutputPath + ";format=" + s.Format
	if s.Transform != "" {
		out += ";transform=" + s.Transform
	}
	return out
}

// ParseOutputSpecification parses "path;key=value;..." where key is format or
// transform.
func ParseOutputSpecification(spec string) (OutputSpecification, error) {
	parts := strings.Split(spec, ";")
	out := OutputSpecification{OutputPath: parts[0]}
	if out.OutputPath == "" {
		return out, errMissingPath
	}

	for _, part := range parts[1:] {
		kv := strings.Split(part, "=")
		if len(kv) != 2 {
			return out, fmt.Errorf("Invalid output specification: %s", spec)
		}
		key, value := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		if value == "" {
			return out, fmt.Errorf("Invalid output specification: %s", spec)
		}
		switch key {
		case "format":
			if out.Format != "" && out.Format != value {
				return out, fmt.Errorf("Conflicting format options: %s", spec)
			}
			out.Format = value
		case "transform":
			if out.Transform != "" {
				return out, fmt.Errorf("Duplicate transform: %s", spec)
			}
			out.Transform = value
		default:
			return out, fmt.Errorf("Invalid option: %s", key)
		}
	}

	switch {
	case out.Transform != "" && out.Format == "":
		out.Format = UserFormat
	case out.Transform != "" && out.Format != UserFormat:
		return out, fmt.Errorf("Conflicting format options: %s", spec)
	case out.Format == "":
		out.Format = DefaultFormat
	}
	return out, nil
}
