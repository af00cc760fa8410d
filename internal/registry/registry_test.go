package registry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/contratos/internal/registry"
)

func TestValid(t *testing.T) {
	type testCase struct {
		name  string
		input string
		want  bool
	}

	tests := []testCase{
		{name: "Valid", input: "11222333000181", want: true},
		{name: "ValidLeadingZeros", input: "00000000000191", want: true},
		{name: "WrongCheckDigit", input: "11222333000182", want: false},
		{name: "TooShort", input: "1122233300018", want: false},
		{name: "Punctuated", input: "11.222.333/0001-81", want: false},
		{name: "RepeatedDigits", input: "11111111111111", want: false},
		{name: "Empty", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, registry.Valid(tt.input))
		})
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "11222333000181", registry.Digits("11.222.333/0001-81"))
	assert.Equal(t, "", registry.Digits("abc"))
}

func TestCompany_Address(t *testing.T) {
	c := registry.Company{Street: "RUA DAS FLORES", Number: "100", City: "SAO PAULO", State: "SP"}
	assert.Equal(t, "RUA DAS FLORES, 100 - SAO PAULO/SP", c.Address())
}

func TestClient_Lookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cnpj/v1/11222333000181":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"cnpj": "11222333000181",
				"razao_social": "ACME SERVICOS LTDA",
				"nome_fantasia": "ACME",
				"logradouro": "RUA DAS FLORES",
				"numero": "100",
				"bairro": "CENTRO",
				"municipio": "SAO PAULO",
				"uf": "SP",
				"cep": "01001000"
			}`))
		case "/api/cnpj/v1/00000000000191":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	client := registry.NewClient(ts.URL+"/api/cnpj/v1/", 5*time.Second)

	t.Run("Success", func(t *testing.T) {
		company, err := client.Lookup(context.Background(), "11.222.333/0001-81")
		require.NoError(t, err)
		assert.Equal(t, "11222333000181", company.CNPJ)
		assert.Equal(t, "ACME SERVICOS LTDA", company.LegalName)
		assert.Equal(t, "SP", company.State)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), "00000000000191")
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})

	t.Run("InvalidCNPJ", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), "123")
		assert.ErrorIs(t, err, registry.ErrInvalidCNPJ)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), "11444777000161")
		require.Error(t, err)
		assert.NotErrorIs(t, err, registry.ErrNotFound)
	})
}
