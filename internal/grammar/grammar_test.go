package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	rule, ok := Lookup("ADT")
	require.True(t, ok)
	assert.Equal(t, []string{"MSH", "EVN", "PID", "PV1"}, rule.Required)
	assert.Equal(t, LevelEnhanced, rule.Level)

	_, ok = Lookup("ZZZ")
	assert.False(t, ok)
}

func TestIsRequired(t *testing.T) {
	tests := []struct {
		name        string
		segmentType string
		messageType string
		want        bool
	}{
		{name: "PID required for ADT", segmentType: "PID", messageType: "ADT", want: true},
		{name: "OBX optional for ADT", segmentType: "OBX", messageType: "ADT", want: false},
		{name: "OBX required for ORU", segmentType: "OBX", messageType: "ORU", want: true},
		{name: "FT1 required for DFT", segmentType: "FT1", messageType: "DFT", want: true},
		{name: "unknown message type requires nothing", segmentType: "PID", messageType: "XYZ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRequired(tt.segmentType, tt.messageType))
		})
	}
}

func TestIsSensitive(t *testing.T) {
	for _, segmentType := range []string{"PID", "OBX", "DG1", "PR1", "AL1", "TXA"} {
		assert.True(t, IsSensitive(segmentType), segmentType)
	}

	for _, segmentType := range []string{"MSH", "EVN", "PV1", "ORC", "NTE"} {
		assert.False(t, IsSensitive(segmentType), segmentType)
	}
}

func TestComplianceLevels(t *testing.T) {
	for _, messageType := range KnownTypes() {
		rule, ok := Lookup(messageType)
		require.True(t, ok)
		assert.Contains(t, []ComplianceLevel{LevelBasic, LevelEnhanced, LevelEnterprise}, rule.Level)
		assert.Contains(t, rule.Required, "MSH", "every type requires its header")
	}

	orm, _ := Lookup("ORM")
	dft, _ := Lookup("DFT")
	assert.Equal(t, LevelEnterprise, orm.Level)
	assert.Equal(t, LevelEnterprise, dft.Level)
}
