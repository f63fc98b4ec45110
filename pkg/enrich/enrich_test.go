package enrich

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/models"
)

func enrichProfile(t *testing.T, p *models.ColumnProfile) *models.ColumnProfile {
	t.Helper()
	require.NoError(t, New(zap.NewNop()).Enrich(context.Background(), p, "orders"))
	return p
}

func TestEnrichSynonyms(t *testing.T) {
	p := enrichProfile(t, &models.ColumnProfile{
		Name:         "customer_email",
		SemanticType: models.SemanticText,
	})

	require.Contains(t, p.SynonymMappings, "email")
	assert.Contains(t, p.SynonymMappings["email"], "e-mail")
	require.Contains(t, p.SynonymMappings, "customer")
	assert.Contains(t, p.SynonymMappings["customer"], "customers", "plural form included")
}

func TestEnrichValueMappings(t *testing.T) {
	p := enrichProfile(t, &models.ColumnProfile{
		Name:          "gender",
		SemanticType:  models.SemanticText,
		IsCategorical: true,
		EnumValues:    []string{"F", "M"},
	})

	assert.Equal(t, map[string]string{"M": "male", "F": "female"}, p.ValueMappings)
}

func TestEnrichValueMappingsOutsideDomain(t *testing.T) {
	p := enrichProfile(t, &models.ColumnProfile{
		Name:          "status",
		SemanticType:  models.SemanticText,
		IsCategorical: true,
		EnumValues:    []string{"active", "inactive"},
	})
	assert.Nil(t, p.ValueMappings)
}

func TestEnrichDescription(t *testing.T) {
	p := enrichProfile(t, &models.ColumnProfile{
		Name:           "email",
		SemanticType:   models.SemanticText,
		SpecialPattern: models.PatternEmail,
		Nullable:       true,
		NullCount:      2,
	})

	assert.True(t, strings.HasPrefix(p.Description, "email: TEXT column."))
	assert.Contains(t, p.Description, "Contains EMAIL values.")
	assert.Contains(t, p.Description, "2 missing values.")
}

func TestEnrichDescriptionRange(t *testing.T) {
	minV, maxV := 25.0, 41.0
	p := enrichProfile(t, &models.ColumnProfile{
		Name:         "age",
		SemanticType: models.SemanticInteger,
		Min:          &minV,
		Max:          &maxV,
	})
	assert.Contains(t, p.Description, "Range 25 to 41.")
}

func TestEnrichExampleQuestions(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.ColumnProfile
		wantSub string
	}{
		{
			name:    "numeric asks for averages",
			profile: &models.ColumnProfile{Name: "unit_price", SemanticType: models.SemanticFloat},
			wantSub: "What is the average unit price?",
		},
		{
			name:    "date asks for recency",
			profile: &models.ColumnProfile{Name: "created_at", SemanticType: models.SemanticDate},
			wantSub: "What is the most recent created at?",
		},
		{
			name:    "boolean asks for counts",
			profile: &models.ColumnProfile{Name: "active", SemanticType: models.SemanticBoolean},
			wantSub: "How many orders rows have active set?",
		},
		{
			name: "categorical asks about top values",
			profile: &models.ColumnProfile{
				Name: "region", SemanticType: models.SemanticText, IsCategorical: true,
				TopValues: []models.ValueCount{{Value: "west", Count: 12}},
			},
			wantSub: `How many rows have region equal to "west"?`,
		},
		{
			name:    "free text asks about phrases",
			profile: &models.ColumnProfile{Name: "notes", SemanticType: models.SemanticText},
			wantSub: "phrase in notes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := enrichProfile(t, tt.profile)
			require.NotEmpty(t, p.ExampleQueries)
			joined := strings.Join(p.ExampleQueries, "\n")
			assert.Contains(t, joined, tt.wantSub)
		})
	}
}

func TestEnrichDeterministic(t *testing.T) {
	newProfile := func() *models.ColumnProfile {
		return &models.ColumnProfile{
			Name:          "order_date",
			SemanticType:  models.SemanticDate,
			IsCategorical: false,
		}
	}
	a, b := enrichProfile(t, newProfile()), enrichProfile(t, newProfile())
	assert.Equal(t, a.SynonymMappings, b.SynonymMappings)
	assert.Equal(t, a.ExampleQueries, b.ExampleQueries)
	assert.Equal(t, a.Description, b.Description)
}
