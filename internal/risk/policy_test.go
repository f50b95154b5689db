package risk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyByName(t *testing.T) {
	for _, name := range Policies() {
		p, err := PolicyByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	p, err := PolicyByName("  SMS ")
	require.NoError(t, err)
	assert.Equal(t, PolicySMS, p.Name())
}

func TestPolicyByName_Unknown(t *testing.T) {
	_, err := PolicyByName("matrix")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPolicy))
}

func TestPolicies_DispatchToVariant(t *testing.T) {
	in := Inputs{Probability: 3, Severity: 4, Aircraft: 2, Findings: 7}

	assert.Equal(t, ClassifyExposure(in), ExposurePolicy{}.Classify(in))
	assert.Equal(t, ClassifySMS(3, 4), SMSPolicy{}.Classify(in))
	assert.Equal(t, ClassifyFindings(7), FindingsPolicy{}.Classify(in))
}

func TestPolicies_ConcurrentUse(t *testing.T) {
	p := ExposurePolicy{}
	done := make(chan Assessment, 16)
	for i := 0; i < 16; i++ {
		go func() { done <- p.Classify(Inputs{Probability: 5, Severity: 5}) }()
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, TierVeryHigh, (<-done).Tier)
	}
}
