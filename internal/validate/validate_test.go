package validate

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

func TestStruct_Valid(t *testing.T) {
	loc := domain.Location{Latitude: 30.2672, Longitude: -97.7431, Timestamp: 1700000000000}
	assert.NoError(t, Struct("location", &loc))
}

func TestStruct_Invalid(t *testing.T) {
	loc := domain.Location{Latitude: 123.4, Longitude: -97.7431, Timestamp: 1700000000000}
	err := Struct("location", &loc)
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "location", verr.Subject)
}

func TestString_StripsScriptTags(t *testing.T) {
	in := `Take cover <script>alert("xss")</script>now`
	assert.Equal(t, "Take cover now", String(in, 200))
}

func TestString_StripsSiblingScriptBlocks(t *testing.T) {
	in := `a<script>x</script>b<script>y</script>c`
	assert.Equal(t, "abc", String(in, 200))
}

func TestString_StripsJavascriptURIs(t *testing.T) {
	in := `click javascript:alert(1) here`
	assert.Equal(t, "click alert(1) here", String(in, 200))
}

func TestString_StripsEventHandlerAttributes(t *testing.T) {
	in := `text onclick=evil() more`
	assert.Equal(t, "text evil() more", String(in, 200))
}

func TestString_Truncates(t *testing.T) {
	in := strings.Repeat("a", 300)
	assert.Len(t, String(in, 200), 200)
}

func TestString_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "hello", String("  hello  ", 200))
	assert.Equal(t, "", String("", 200))
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		fallback float64
		min, max float64
		want     float64
	}{
		{"in range", 45, 0, -90, 90, 45},
		{"at lower bound", -90, 0, -90, 90, -90},
		{"at upper bound", 90, 0, -90, 90, 90},
		{"above range", 150, 0, -90, 90, 0},
		{"below range", -150, 0, -90, 90, 0},
		{"nan", math.NaN(), 25, 1, 1000, 25},
		{"positive inf", math.Inf(1), 25, 1, 1000, 25},
		{"negative inf", math.Inf(-1), 25, 1, 1000, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.input, tt.fallback, tt.min, tt.max))
		})
	}
}
