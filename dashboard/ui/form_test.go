package ui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"aerosafety/rbo/internal/db/repositories"
	gormModels "aerosafety/rbo/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorForm_Input(t *testing.T) {
	form := formFromValues(url.Values{
		"name":            {"  Andes Air "},
		"evaluation_date": {"2024-03-15"},
		"probability":     {"3"},
		"severity":        {""},
		"aircraft_count":  {" 12 "},
	})

	in, err := form.Input()
	require.NoError(t, err)
	assert.Equal(t, "Andes Air", in.Name)
	require.NotNil(t, in.Probability)
	assert.Equal(t, 3, *in.Probability)
	assert.Nil(t, in.Severity)
	require.NotNil(t, in.AircraftCount)
	assert.Equal(t, 12, *in.AircraftCount)
	assert.Nil(t, in.FindingsCount)
}

func TestOperatorForm_InputRejectsNonNumbers(t *testing.T) {
	form := OperatorForm{Name: "X", EvaluationDate: "2024-01-01", MonthlyFlights: "lots"}

	_, err := form.Input()
	var ve *repositories.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "monthly_flights", ve.Field)
}

func TestFormFromOperator(t *testing.T) {
	op := &gormModels.Operator{
		Name:           "Coastal Hops",
		EvaluationDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Probability:    2,
		Inspector:      gormModels.DefaultInspector,
	}

	form := formFromOperator(op)
	assert.Equal(t, "2024-01-02", form.EvaluationDate)
	assert.Equal(t, "2", form.Probability)
	assert.Equal(t, "0", form.FindingsCount)
	assert.Empty(t, form.Inspector)
}

func TestEmptyFormDefaultsToToday(t *testing.T) {
	now := time.Date(2025, 7, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-09", emptyForm(now).EvaluationDate)
}

func TestRenderTemplate_AllPagesParse(t *testing.T) {
	for _, name := range []string{"auth/login.html", "dashboard/index.html", "operators/edit.html"} {
		_, err := page(name)
		assert.NoError(t, err, name)
	}

	rec := httptest.NewRecorder()
	err := RenderTemplate(rec, http.StatusTeapot, "auth/login.html", map[string]interface{}{
		"PageTitle":    "Login",
		"Error":        "<script>alert(1)</script>",
		"FormUsername": "inspector",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
	assert.NotContains(t, rec.Body.String(), "<script>alert")
}
