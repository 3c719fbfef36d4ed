package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asq3-api/internal/asq3"
	"github.com/noah-isme/asq3-api/internal/models"
)

func TestLoadBundled(t *testing.T) {
	data, err := Load("")
	require.NoError(t, err)

	assert.Len(t, data.Intervals, 21)
	assert.Len(t, data.Domains, 5)
	assert.Len(t, data.Cutoffs, 21*5)
	assert.Len(t, data.Questions, 6*30)
	// Seven buckets spanning all 21 intervals, three texts per domain.
	assert.Len(t, data.Recommendations, 21*5*3)

	catalog, err := asq3.NewCatalog(data)
	require.NoError(t, err)

	twelve, err := catalog.Resolve(365)
	require.NoError(t, err)
	assert.Equal(t, "12 Bulan", twelve.AgeLabel)
	assert.Len(t, catalog.QuestionSet(twelve.ID), 30)
	for _, questions := range catalog.QuestionsFor(twelve.ID) {
		assert.Len(t, questions, 6)
	}

	communication, ok := catalog.DomainByCode(models.DomainCommunication)
	require.True(t, ok)
	require.NotNil(t, communication.Color)
	assert.Equal(t, "#4CAF50", *communication.Color)

	two, err := catalog.Resolve(60)
	require.NoError(t, err)
	cutoff, ok := catalog.Cutoff(two.ID, communication.ID)
	require.True(t, ok)
	assert.Equal(t, 22.77, cutoff.CutoffScore)
	assert.Equal(t, 41.39, cutoff.MonitoringScore)
	assert.Equal(t, 60.0, cutoff.MaxScore)

	texts := catalog.RecommendationsFor(communication.ID, twelve.ID)
	require.Len(t, texts, 3)
	assert.True(t, strings.HasPrefix(texts[0], "Sebutkan nama benda-benda"))
}

func TestBundledQuestionsCoverSixIntervals(t *testing.T) {
	data, err := Load("")
	require.NoError(t, err)

	assert.Equal(t,
		[]int{4, 6, 8, 9, 10, 14, 16, 18, 20, 22, 27, 30, 33, 42, 54},
		MissingQuestions(data))
}

func TestIDsAreStable(t *testing.T) {
	assert.Equal(t, ID("interval", 12), ID("interval", 12))
	assert.NotEqual(t, ID("interval", 12), ID("interval", 14))

	first, err := Load("")
	require.NoError(t, err)
	second, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, first.Questions[0].ID, second.Questions[0].ID)
}

func TestLoadQuestionsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.csv")
	content := "usia,domain,nomor,pertanyaan,petunjuk\n" +
		"12 Bulan,Komunikasi,1,\"Apakah anak menoleh saat dipanggil?\",Panggil dari belakang\n" +
		"12 Bulan,Personal-Sosial,1,Apakah anak melambaikan tangan?,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	data, err := Load(path)
	require.NoError(t, err)
	require.Len(t, data.Questions, 2)
	require.NotNil(t, data.Questions[0].HintText)
	assert.Equal(t, "Panggil dari belakang", *data.Questions[0].HintText)
	assert.Nil(t, data.Questions[1].HintText)
	assert.Equal(t, ID("domain", models.DomainPersonalSocial), data.Questions[1].DomainID)
}

func TestParseRejectsBadQuestions(t *testing.T) {
	reference, err := bundled.ReadFile("data/reference.yaml")
	require.NoError(t, err)

	cases := map[string]string{
		"unknown interval": "a,b,c,d\n13,communication,1,x\n",
		"unknown domain":   "a,b,c,d\n12,vision,1,x\n",
		"bad number":       "a,b,c,d\n12,communication,one,x\n",
		"duplicate":        "a,b,c,d\n12,communication,1,x\n12,Komunikasi,1,y\n",
	}
	for name, csvContent := range cases {
		_, err := Parse(reference, strings.NewReader(csvContent))
		assert.Error(t, err, name)
	}
}
