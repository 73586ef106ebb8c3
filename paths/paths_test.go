package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/asr-bias/config"
	"github.com/maastricht-university/asr-bias/errs"
)

func testConfig() *config.Root {
	return &config.Root{
		BasePath:             "/data",
		SpeakingStyleFolders: []string{"read", "spontaneous"},
		SpeakingStyleInfixes: []string{"r", "s"},
		SpeakerGroups:        []string{"young", "old"},
		ASRModels:            []string{"NoAug", "Whisper"},
		PathTemplates: config.PathTemplates{
			OutputFile:    "{base_path}/{speaking_style_folder}/{asr_model}/{speaker_group}_{speaking_style_infix}.csv",
			ErrorRateFile: "{base_path}/{error_rate}/{speaking_style_folder}/{asr_model}_{speaker_group}.txt",
		},
	}
}

func TestCounts(t *testing.T) {
	r := New(testConfig())
	p, err := r.Counts(Triple{Model: "Whisper", Group: "old", Style: "spontaneous"})
	require.NoError(t, err)
	assert.Equal(t, "/data/spontaneous/Whisper/old_s.csv", p)
}

func TestRates(t *testing.T) {
	r := New(testConfig())
	p, err := r.Rates("MER", Triple{Model: "NoAug", Group: "young", Style: "read"})
	require.NoError(t, err)
	assert.Equal(t, "/data/MER/read/NoAug_young.txt", p)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Root)
		triple Triple
	}{
		{"missing template", func(c *config.Root) { c.PathTemplates.OutputFile = "" }, Triple{"NoAug", "young", "read"}},
		{"unknown placeholder", func(c *config.Root) { c.PathTemplates.OutputFile = "{base_path}/{corpus}.csv" }, Triple{"NoAug", "young", "read"}},
		{"unknown style", func(c *config.Root) {}, Triple{"NoAug", "young", "whisper"}},
		{"error rate in count path", func(c *config.Root) { c.PathTemplates.OutputFile = "{base_path}/{error_rate}/{asr_model}.csv" }, Triple{"NoAug", "young", "read"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(c)
			_, err := New(c).Counts(tt.triple)
			assert.ErrorIs(t, err, errs.Configuration)
		})
	}
}

func TestGridOrder(t *testing.T) {
	grid := New(testConfig()).Grid()
	require.Len(t, grid, 8)
	assert.Equal(t, Triple{"NoAug", "young", "read"}, grid[0])
	assert.Equal(t, Triple{"NoAug", "old", "read"}, grid[1])
	assert.Equal(t, Triple{"Whisper", "young", "read"}, grid[2])
	assert.Equal(t, Triple{"Whisper", "old", "spontaneous"}, grid[7])
}
