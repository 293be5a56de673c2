package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pippoche/svbot/internal/application/flow"
	"github.com/pippoche/svbot/internal/domain"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		err   error
	}{
		{name: "entero", input: "5", want: "5"},
		{name: "punto decimal", input: "5.5", want: "5.5"},
		{name: "coma decimal", input: "5,5", want: "5.5"},
		{name: "espacios alrededor", input: "  7 ", want: "7"},
		{name: "cero", input: "0", err: domain.ErrNotPositive},
		{name: "negativo", input: "-1", err: domain.ErrNotPositive},
		{name: "texto", input: "abc", err: domain.ErrNotANumber},
		{name: "vacío", input: "", err: domain.ErrNotANumber},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := flow.ParseQuantity(tc.input)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParsePrice_AdmiteCero(t *testing.T) {
	got, err := flow.ParsePrice("0")
	require.NoError(t, err, "un gasto puede no tener precio")
	assert.Equal(t, "0", got.String())

	got, err = flow.ParsePrice("1500,50")
	require.NoError(t, err)
	assert.Equal(t, "1500.5", got.String())

	_, err = flow.ParsePrice("-10")
	assert.ErrorIs(t, err, domain.ErrNotPositive, "el precio negativo sigue siendo inválido")
}
