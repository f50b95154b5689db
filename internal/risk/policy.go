package risk

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPolicy = errors.New("unknown risk policy")

// Policy is a named, selectable scoring rule
type Policy interface {
	Name() string
	Classify(in Inputs) Assessment
}

type ExposurePolicy struct{}

func (ExposurePolicy) Name() string                  { return PolicyExposure }
func (ExposurePolicy) Classify(in Inputs) Assessment { return ClassifyExposure(in) }

type SMSPolicy struct{}

func (SMSPolicy) Name() string { return PolicySMS }
func (SMSPolicy) Classify(in Inputs) Assessment {
	return ClassifySMS(in.Probability, in.Severity)
}

type FindingsPolicy struct{}

func (FindingsPolicy) Name() string { return PolicyFindings }
func (FindingsPolicy) Classify(in Inputs) Assessment {
	return ClassifyFindings(in.Findings)
}

var policies = []Policy{ExposurePolicy{}, SMSPolicy{}, FindingsPolicy{}}

// Policies returns the names of every available policy
func Policies() []string {
	names := make([]string, 0, len(policies))
	for _, p := range policies {
		names = append(names, p.Name())
	}
	return names
}

// PolicyByName resolves a policy name (case-insensitive)
func PolicyByName(name string) (Policy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range policies {
		if p.Name() == n {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownPolicy, name, strings.Join(Policies(), ", "))
}
