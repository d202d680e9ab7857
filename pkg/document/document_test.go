package document

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "formatted cpf", in: "111.222.333-44", want: "11122233344"},
		{name: "plain cpf", in: "11122233344", want: "11122233344"},
		{name: "cns with spaces", in: "123 4567 8901 2345", want: "123456789012345"},
		{name: "empty", in: "", want: ""},
		{name: "only punctuation", in: "..-/", want: ""},
		{name: "non ascii digits dropped", in: "١٢٣45", want: "45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "José da Conceição", want: "jose da conceicao"},
		{in: "MARIA DA GRAÇA", want: "maria da graca"},
		{in: "Hipertensão", want: "hipertensao"},
		{in: "ana", want: "ana"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("111.222.333-44", "11122233344") {
		t.Error("expected formatted and plain cpf to be equal")
	}
	if Equal("", "") {
		t.Error("empty documents must never match")
	}
	if Equal("---", "") {
		t.Error("documents without digits must never match")
	}
	if Equal("11122233344", "11122233345") {
		t.Error("different documents must not match")
	}
}
